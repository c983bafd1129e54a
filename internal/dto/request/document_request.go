package request

import "encoding/json"

// DocumentURI 单文档路径参数
// 使用位置: handler.DocumentHandler.Get / Put
type DocumentURI struct {
	Collection string `uri:"collection" binding:"required,max=64,collection"`
	ID         string `uri:"id" binding:"required,max=128"`
}

// CollectionURI 集合路径参数
// 使用位置: handler.DocumentHandler.Create / Query
type CollectionURI struct {
	Collection string `uri:"collection" binding:"required,max=64,collection"`
}

// WriteDocumentRequest 写入文档请求体
type WriteDocumentRequest struct {
	Keys []string        `json:"keys" binding:"omitempty,max=16,dive,required,max=128,excludesall=0x7C"`
	Data json.RawMessage `json:"data" binding:"required"`
}

// QueryDocumentsRequest 按查询键列出文档
type QueryDocumentsRequest struct {
	Key string `form:"key" binding:"required,max=128,excludesall=0x7C"`
}
