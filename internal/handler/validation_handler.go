package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/errcode"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/response"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

type ValidationHandler struct {
	validation *service.ValidationService
}

func NewValidationHandler(validation *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{validation: validation}
}

type runScanRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

// RunScan answers 202; findings land in the mismatch list as the background
// scan progresses over the requested documents.
func (h *ValidationHandler) RunScan(c *gin.Context) {
	var req runScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.validation.RunScan(c.Request.Context(), getUserID(c), req.DocumentIDs); err != nil {
		handleError(c, err)
		return
	}
	response.Accepted(c, gin.H{"status": "scanning"})
}

func (h *ValidationHandler) ListMismatches(c *gin.Context) {
	filter := model.MismatchFilter{
		Status:       c.Query("status"),
		Severity:     c.Query("severity"),
		MismatchType: c.Query("mismatch_type"),
		DocumentID:   c.Query("document_id"),
		Limit:        queryUint(c, "limit", 100),
		Offset:       queryUint(c, "offset", 0),
	}
	views, err := h.validation.ListMismatches(c.Request.Context(), getUserID(c), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, views)
}
