package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/pkg/errcode"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/response"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file is required")
		return
	}
	documentType := c.PostForm("document_type")
	version := c.PostForm("version")
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "cannot read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), getUserID(c), fileHeader.Filename, documentType, version, file, fileHeader.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit := queryUint(c, "limit", 50)
	offset := queryUint(c, "offset", 0)
	docs, err := h.documents.List(c.Request.Context(), getUserID(c), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
