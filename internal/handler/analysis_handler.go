package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/pkg/errcode"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/response"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

type AnalysisHandler struct {
	analysis      *service.AnalysisService
	consolidation *service.ConsolidationService
}

func NewAnalysisHandler(analysis *service.AnalysisService, consolidation *service.ConsolidationService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, consolidation: consolidation}
}

// Run answers 202 once the pipeline is accepted; clients poll Get for
// progress afterwards.
func (h *AnalysisHandler) Run(c *gin.Context) {
	docID := c.Param("id")
	if err := h.analysis.Start(c.Request.Context(), getUserID(c), docID); err != nil {
		handleError(c, err)
		return
	}
	response.Accepted(c, gin.H{"document_id": docID, "status": "processing"})
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	view, err := h.analysis.GetAnalysis(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

// GetConsolidated returns 404 until a merge has been generated; a stale
// cache is never refreshed implicitly.
func (h *AnalysisHandler) GetConsolidated(c *gin.Context) {
	res, err := h.consolidation.GetCached(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

type consolidateRequest struct {
	Save *bool `json:"save"`
}

// GenerateConsolidated merges the current segment results and, unless the
// body says {"save": false}, replaces the cached copy. The merge input is
// always the stored results; client-supplied analysis data is not accepted,
// so a caller cannot cache a consolidated view the pipeline never produced.
func (h *AnalysisHandler) GenerateConsolidated(c *gin.Context) {
	save := true
	if c.Request.ContentLength > 0 {
		var req consolidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
			return
		}
		if req.Save != nil {
			save = *req.Save
		}
	}
	res, err := h.consolidation.Generate(c.Request.Context(), getUserID(c), c.Param("id"), save)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}
