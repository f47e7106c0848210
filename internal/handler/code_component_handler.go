package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/pkg/errcode"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/response"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

type CodeComponentHandler struct {
	components   *service.ComponentService
	codeAnalysis *service.CodeAnalysisService
}

func NewCodeComponentHandler(components *service.ComponentService, codeAnalysis *service.CodeAnalysisService) *CodeComponentHandler {
	return &CodeComponentHandler{components: components, codeAnalysis: codeAnalysis}
}

type codeComponentRequest struct {
	Name          string `json:"name"`
	ComponentType string `json:"component_type"`
	Location      string `json:"location"`
	Version       string `json:"version"`
}

func (h *CodeComponentHandler) Create(c *gin.Context) {
	var req codeComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	comp, err := h.components.Create(c.Request.Context(), getUserID(c), req.Name, req.ComponentType, req.Location, req.Version)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comp)
}

func (h *CodeComponentHandler) List(c *gin.Context) {
	limit := queryUint(c, "limit", 50)
	offset := queryUint(c, "offset", 0)
	comps, err := h.components.List(c.Request.Context(), getUserID(c), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comps)
}

func (h *CodeComponentHandler) Get(c *gin.Context) {
	comp, err := h.components.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comp)
}

func (h *CodeComponentHandler) Delete(c *gin.Context) {
	if err := h.components.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Analyze answers 202; the component's analysis_status tracks completion.
func (h *CodeComponentHandler) Analyze(c *gin.Context) {
	compID := c.Param("id")
	if err := h.codeAnalysis.Analyze(c.Request.Context(), getUserID(c), compID); err != nil {
		handleError(c, err)
		return
	}
	response.Accepted(c, gin.H{"component_id": compID, "analysis_status": "processing"})
}
