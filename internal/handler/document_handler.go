package handler

import (
	"mentor_sync/internal/dto/request"
	"mentor_sync/internal/dto/respond"
	"mentor_sync/internal/service"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 文档请求处理器
type DocumentHandler struct {
	documentSvc service.DocumentService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// Get 读取单个文档
// GET /api/v1/collections/:collection/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	var uri request.DocumentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.documentSvc.Get(c.Request.Context(), uri.Collection, uri.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Put 创建或覆盖文档
// PUT /api/v1/collections/:collection/documents/:id
func (h *DocumentHandler) Put(c *gin.Context) {
	var uri request.DocumentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.WriteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.documentSvc.Put(c.Request.Context(), uri.Collection, uri.ID, req.Keys, req.Data); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Create 创建文档，由服务端分配标识
// POST /api/v1/collections/:collection/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var uri request.CollectionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.WriteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	id, err := h.documentSvc.Create(c.Request.Context(), uri.Collection, req.Keys, req.Data)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.CreateDocumentRespond{ID: id})
}

// Query 按查询键列出文档
// GET /api/v1/collections/:collection/documents?key=...
func (h *DocumentHandler) Query(c *gin.Context) {
	var uri request.CollectionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.QueryDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.documentSvc.Query(c.Request.Context(), uri.Collection, req.Key)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
