package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/pkg/errcode"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/response"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

type LinkHandler struct {
	links *service.LinkService
}

func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

type linkRequest struct {
	DocumentID      string `json:"document_id"`
	CodeComponentID string `json:"code_component_id"`
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.DocumentID == "" || req.CodeComponentID == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "document_id and code_component_id are required")
		return
	}
	link, err := h.links.Create(c.Request.Context(), getUserID(c), req.DocumentID, req.CodeComponentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, link)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.links.Delete(c.Request.Context(), getUserID(c), req.DocumentID, req.CodeComponentID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *LinkHandler) ListByDocument(c *gin.Context) {
	links, err := h.links.ListByDocument(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, links)
}
