package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

// AnalysisService drives the multi-pass document pipeline: composition
// profiling, segmentation, then per-segment fact extraction. A document runs
// at most one pipeline at a time; reruns replace prior segments and results.
type AnalysisService struct {
	docs     DocumentStore
	segments SegmentStore
	results  ResultStore
	ai       ai.Collaborator

	mu      sync.Mutex
	running map[string]struct{}
}

func NewAnalysisService(docs DocumentStore, segments SegmentStore, results ResultStore, collab ai.Collaborator) *AnalysisService {
	return &AnalysisService{
		docs:     docs,
		segments: segments,
		results:  results,
		ai:       collab,
		running:  make(map[string]struct{}),
	}
}

// DocumentAnalysis is the combined read model for a document's pipeline
// output: segments paired with their extraction results plus roll-up stats.
type DocumentAnalysis struct {
	Document *model.Document         `json:"document"`
	Segments []model.SegmentAnalysis `json:"segments"`
	Stats    model.AnalysisStats     `json:"stats"`
}

// Start kicks off the pipeline in the background. It returns
// ErrAlreadyRunning while a prior run for the same document is in flight.
func (s *AnalysisService) Start(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	if doc.RawText == "" {
		return fmt.Errorf("document has no extracted text: %w", appErr.ErrInvalid)
	}
	s.mu.Lock()
	if _, ok := s.running[docID]; ok {
		s.mu.Unlock()
		return appErr.ErrAlreadyRunning
	}
	s.running[docID] = struct{}{}
	s.mu.Unlock()

	if err := s.docs.UpdateStatusProgress(ctx, docID, model.StatusProcessing, 0, timeutil.NowMilli()); err != nil {
		s.finish(docID)
		return err
	}
	// detached from the request context so the pipeline survives the 202
	go s.run(context.Background(), doc)
	return nil
}

func (s *AnalysisService) finish(docID string) {
	s.mu.Lock()
	delete(s.running, docID)
	s.mu.Unlock()
}

func (s *AnalysisService) run(ctx context.Context, doc *model.Document) {
	defer s.finish(doc.ID)
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", doc.ID))

	// A rerun replaces everything from the prior run except the cached
	// consolidated result, which is regenerated on demand.
	if err := s.segments.DeleteByDocument(ctx, doc.ID); err != nil {
		logger.Error("failed to clear prior segments", zap.Error(err))
		s.fail(ctx, doc.ID)
		return
	}
	if err := s.results.DeleteSegmentResults(ctx, doc.ID); err != nil {
		logger.Error("failed to clear prior results", zap.Error(err))
		s.fail(ctx, doc.ID)
		return
	}

	segments, ok := s.runCompositionAndSegmentation(ctx, logger, doc)
	if !ok {
		return
	}
	s.runExtraction(ctx, logger, doc, segments)
}

// runCompositionAndSegmentation executes the first two passes. The
// composition response is stored verbatim; segment spans are validated
// against the document text and invalid ones dropped.
func (s *AnalysisService) runCompositionAndSegmentation(ctx context.Context, logger *zap.Logger, doc *model.Document) ([]model.DocumentSegment, bool) {
	raw, err := s.ai.AnalyzeJSON(ctx, ai.ProfileComposition, doc.RawText)
	if err != nil {
		logger.Error("composition pass failed", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}
	if _, err := ai.ParseComposition(raw); err != nil {
		logger.Error("composition response unusable", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}
	if err := s.docs.UpdateComposition(ctx, doc.ID, raw, timeutil.NowMilli()); err != nil {
		logger.Error("failed to store composition", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}

	raw, err = s.ai.AnalyzeJSON(ctx, ai.ProfileSegmentation, doc.RawText)
	if err != nil {
		logger.Error("segmentation pass failed", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}
	seg, err := ai.ParseSegmentation(raw)
	if err != nil {
		logger.Error("segmentation response unusable", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}

	now := timeutil.NowMilli()
	segments := make([]model.DocumentSegment, 0, len(seg.Segments))
	for _, span := range seg.Segments {
		if span.StartCharIndex < 0 || span.EndCharIndex <= span.StartCharIndex || span.EndCharIndex > len(doc.RawText) {
			logger.Warn("dropping segment with out-of-bounds span",
				zap.String("segment_type", span.SegmentType),
				zap.Int("start", span.StartCharIndex),
				zap.Int("end", span.EndCharIndex),
			)
			continue
		}
		segments = append(segments, model.DocumentSegment{
			ID:             newID(),
			DocumentID:     doc.ID,
			SegmentType:    span.SegmentType,
			StartCharIndex: span.StartCharIndex,
			EndCharIndex:   span.EndCharIndex,
			Position:       len(segments),
			Ctime:          now,
		})
	}
	if len(segments) == 0 {
		logger.Error("no usable segments after validation")
		s.fail(ctx, doc.ID)
		return nil, false
	}
	if err := s.segments.CreateBatch(ctx, segments); err != nil {
		logger.Error("failed to store segments", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}
	if err := s.docs.UpdateStatusProgress(ctx, doc.ID, model.StatusProcessing, 10, timeutil.NowMilli()); err != nil {
		logger.Error("failed to advance progress", zap.Error(err))
		s.fail(ctx, doc.ID)
		return nil, false
	}
	return segments, true
}

// extractionInput pairs a segment's text with its type so the collaborator
// applies the right extraction schema.
type extractionInput struct {
	SegmentType string `json:"segment_type"`
	Text        string `json:"text"`
}

// runExtraction runs pass three sequentially over the segments. A segment
// whose extraction fails is logged and skipped; the run completes as long as
// at least one segment produced structured facts.
func (s *AnalysisService) runExtraction(ctx context.Context, logger *zap.Logger, doc *model.Document, segments []model.DocumentSegment) {
	succeeded := 0
	for i, seg := range segments {
		input, err := json.Marshal(extractionInput{
			SegmentType: seg.SegmentType,
			Text:        doc.RawText[seg.StartCharIndex:seg.EndCharIndex],
		})
		if err != nil {
			logger.Error("failed to encode extraction input", zap.String("segment_id", seg.ID), zap.Error(err))
			continue
		}
		raw, err := s.ai.AnalyzeJSON(ctx, ai.ProfileExtraction, string(input))
		if err != nil {
			logger.Warn("segment extraction failed",
				zap.String("segment_id", seg.ID),
				zap.String("segment_type", seg.SegmentType),
				zap.Error(err),
			)
		} else {
			res := &model.AnalysisResult{
				ID:             newID(),
				DocumentID:     doc.ID,
				SegmentID:      seg.ID,
				StructuredData: raw,
				Ctime:          timeutil.NowMilli(),
			}
			if err := s.results.UpsertSegmentResult(ctx, res); err != nil {
				logger.Error("failed to store segment result", zap.String("segment_id", seg.ID), zap.Error(err))
			} else {
				succeeded++
			}
		}
		// the last segment's progress is reported by the terminal write below
		if i+1 < len(segments) {
			progress := 10 + 90*(i+1)/len(segments)
			if err := s.docs.UpdateStatusProgress(ctx, doc.ID, model.StatusProcessing, progress, timeutil.NowMilli()); err != nil {
				logger.Error("failed to advance progress", zap.Error(err))
			}
		}
	}
	if succeeded == 0 {
		logger.Error("all segment extractions failed")
		s.fail(ctx, doc.ID)
		return
	}
	if err := s.docs.UpdateStatusProgress(ctx, doc.ID, model.StatusCompleted, 100, timeutil.NowMilli()); err != nil {
		logger.Error("failed to mark document completed", zap.Error(err))
	}
	logger.Info("document pipeline completed",
		zap.Int("segments", len(segments)),
		zap.Int("extracted", succeeded),
	)
}

// fail flips the status only; progress stays at the last reported value so
// pollers never see it move backwards.
func (s *AnalysisService) fail(ctx context.Context, docID string) {
	if err := s.docs.UpdateStatus(ctx, docID, model.StatusFailed, timeutil.NowMilli()); err != nil {
		logutil.GetLogger(ctx).Error("failed to mark document failed",
			zap.String("document_id", docID), zap.Error(err))
	}
}

// GetAnalysis assembles the combined pipeline view for polling clients.
func (s *AnalysisService) GetAnalysis(ctx context.Context, userID, docID string) (*DocumentAnalysis, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	segments, err := s.segments.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	bySegment := make(map[string]*model.AnalysisResult, len(results))
	for i := range results {
		bySegment[results[i].SegmentID] = &results[i]
	}
	out := &DocumentAnalysis{
		Document: doc,
		Segments: make([]model.SegmentAnalysis, 0, len(segments)),
	}
	for _, seg := range segments {
		entry := model.SegmentAnalysis{Segment: seg}
		if res, ok := bySegment[seg.ID]; ok {
			entry.Result = res
			out.Stats.Analyzed++
		} else {
			out.Stats.Failed++
		}
		out.Segments = append(out.Segments, entry)
	}
	out.Stats.Total = len(segments)
	return out, nil
}
