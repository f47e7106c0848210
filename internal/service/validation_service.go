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

// ValidationService cross-checks every linked document/component pair and
// records the divergences it finds as mismatch rows. One scan per user at a
// time; findings append, earlier rows are never rewritten.
type ValidationService struct {
	docs       DocumentStore
	components ComponentStore
	links      LinkStore
	mismatches MismatchStore
	ai         ai.Collaborator

	mu       sync.Mutex
	scanning map[string]struct{}
}

func NewValidationService(docs DocumentStore, components ComponentStore, links LinkStore, mismatches MismatchStore, collab ai.Collaborator) *ValidationService {
	return &ValidationService{
		docs:       docs,
		components: components,
		links:      links,
		mismatches: mismatches,
		ai:         collab,
		scanning:   make(map[string]struct{}),
	}
}

// pairInput is what the collaborator sees for one linked pair.
type pairInput struct {
	DocumentText string          `json:"document_text"`
	CodeAnalysis json.RawMessage `json:"code_analysis"`
}

// RunScan resolves the requested documents, then launches a background scan
// over their linked pairs. ErrAlreadyRunning while a prior scan for the user
// is in flight.
func (s *ValidationService) RunScan(ctx context.Context, userID string, docIDs []string) error {
	if len(docIDs) == 0 {
		return fmt.Errorf("no documents to scan: %w", appErr.ErrInvalid)
	}
	docs := make([]*model.Document, 0, len(docIDs))
	for _, docID := range docIDs {
		doc, err := s.docs.GetByID(ctx, userID, docID)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	s.mu.Lock()
	if _, ok := s.scanning[userID]; ok {
		s.mu.Unlock()
		return appErr.ErrAlreadyRunning
	}
	s.scanning[userID] = struct{}{}
	s.mu.Unlock()

	go s.scan(context.Background(), userID, docs)
	return nil
}

func (s *ValidationService) scan(ctx context.Context, userID string, docs []*model.Document) {
	defer func() {
		s.mu.Lock()
		delete(s.scanning, userID)
		s.mu.Unlock()
	}()
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))

	pairs, findings := 0, 0
	for _, doc := range docs {
		p, f := s.scanDocument(ctx, logger, userID, doc)
		pairs += p
		findings += f
	}
	logger.Info("validation scan finished", zap.Int("pairs", pairs), zap.Int("findings", findings))
}

func (s *ValidationService) scanDocument(ctx context.Context, logger *zap.Logger, userID string, doc *model.Document) (int, int) {
	links, err := s.links.ListByDocument(ctx, doc.ID)
	if err != nil {
		logger.Error("failed to list links", zap.String("document_id", doc.ID), zap.Error(err))
		return 0, 0
	}
	pairs, findings := 0, 0
	for _, link := range links {
		comp, err := s.components.Get(ctx, link.CodeComponentID)
		if err != nil {
			logger.Warn("linked component missing", zap.String("component_id", link.CodeComponentID), zap.Error(err))
			continue
		}
		// A pair is only comparable once both sides have content.
		if doc.RawText == "" || len(comp.StructuredAnalysis) == 0 {
			continue
		}
		pairs++
		findings += s.comparePair(ctx, logger, userID, doc, comp)
	}
	return pairs, findings
}

func (s *ValidationService) comparePair(ctx context.Context, logger *zap.Logger, userID string, doc *model.Document, comp *model.CodeComponent) int {
	input, err := json.Marshal(pairInput{
		DocumentText: doc.RawText,
		CodeAnalysis: comp.StructuredAnalysis,
	})
	if err != nil {
		logger.Error("failed to encode pair input", zap.Error(err))
		return 0
	}
	raw, err := s.ai.AnalyzeJSON(ctx, ai.ProfileValidation, string(input))
	if err != nil {
		logger.Warn("pair comparison failed",
			zap.String("document_id", doc.ID),
			zap.String("component_id", comp.ID),
			zap.Error(err),
		)
		return 0
	}
	results, err := ai.ParseFindings(raw)
	if err != nil {
		logger.Warn("comparison response unusable",
			zap.String("document_id", doc.ID),
			zap.String("component_id", comp.ID),
			zap.Error(err),
		)
		return 0
	}
	stored := 0
	for _, finding := range results {
		m := &model.Mismatch{
			ID:              newID(),
			UserID:          userID,
			DocumentID:      doc.ID,
			CodeComponentID: comp.ID,
			MismatchType:    finding.MismatchType,
			Description:     finding.Description,
			Severity:        finding.Severity,
			Confidence:      finding.Confidence,
			Status:          model.MismatchStatusNew,
			Details: model.MismatchDetails{
				Expected:         finding.Details.Expected,
				Actual:           finding.Details.Actual,
				EvidenceDocument: finding.Details.EvidenceDocument,
				EvidenceCode:     finding.Details.EvidenceCode,
				SuggestedAction:  finding.Details.SuggestedAction,
			},
			DetectedAt: timeutil.NowMilli(),
		}
		if err := s.mismatches.Create(ctx, m); err != nil {
			logger.Error("failed to store mismatch", zap.Error(err))
			continue
		}
		stored++
	}
	return stored
}

func (s *ValidationService) ListMismatches(ctx context.Context, userID string, filter model.MismatchFilter) ([]model.MismatchView, error) {
	return s.mismatches.List(ctx, userID, filter)
}
