package respond

// CreateDocumentRespond 创建文档响应
type CreateDocumentRespond struct {
	ID string `json:"id"`
}
