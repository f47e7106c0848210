package service

import (
	"context"
	"encoding/json"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

// ConsolidationService merges a document's per-segment extraction results
// into a single structured view. The merge is cached; regeneration is an
// explicit client action, never implicit.
type ConsolidationService struct {
	docs     DocumentStore
	segments SegmentStore
	results  ResultStore
	ai       ai.Collaborator
}

func NewConsolidationService(docs DocumentStore, segments SegmentStore, results ResultStore, collab ai.Collaborator) *ConsolidationService {
	return &ConsolidationService{docs: docs, segments: segments, results: results, ai: collab}
}

// consolidationPart is one segment's contribution to the merge input; the
// segment type tells the collaborator which schema each blob follows.
type consolidationPart struct {
	SegmentType string          `json:"segment_type"`
	Data        json.RawMessage `json:"data"`
}

// GetCached returns the stored consolidated result, ErrNotFound when none
// has been generated yet.
func (s *ConsolidationService) GetCached(ctx context.Context, userID, docID string) (*model.AnalysisResult, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	return s.results.GetConsolidated(ctx, docID)
}

// Generate runs the merge over all current segment results. With save set
// the cached copy is replaced; otherwise the result is returned without
// touching the cache. ErrNothingToMerge when the document has no results yet.
func (s *ConsolidationService) Generate(ctx context.Context, userID, docID string, save bool) (*model.AnalysisResult, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	results, err := s.results.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, appErr.ErrNothingToMerge
	}
	segments, err := s.segments.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	typeBySegment := make(map[string]string, len(segments))
	for _, seg := range segments {
		typeBySegment[seg.ID] = seg.SegmentType
	}
	parts := make([]consolidationPart, 0, len(results))
	for _, res := range results {
		parts = append(parts, consolidationPart{
			SegmentType: typeBySegment[res.SegmentID],
			Data:        res.StructuredData,
		})
	}
	input, err := json.Marshal(parts)
	if err != nil {
		return nil, err
	}
	raw, err := s.ai.AnalyzeJSON(ctx, ai.ProfileConsolidation, string(input))
	if err != nil {
		logutil.GetLogger(ctx).Error("consolidation call failed",
			zap.String("document_id", docID), zap.Error(err))
		return nil, err
	}
	merged := &model.AnalysisResult{
		ID:             newID(),
		DocumentID:     docID,
		Consolidated:   true,
		StructuredData: raw,
		Ctime:          timeutil.NowMilli(),
	}
	if save {
		if err := s.results.UpsertConsolidated(ctx, merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
