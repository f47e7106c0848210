package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

const maxFetchedCodeBytes = 1 << 20

// Fetcher retrieves the source text a component's location points at.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}

type httpFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *httpFetcher) Fetch(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", err
	}
	rsp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch location: unexpected status %d", rsp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(rsp.Body, maxFetchedCodeBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CodeAnalysisService fetches a component's source and asks the collaborator
// for a summary plus structured facts, tracked through the component's
// analysis_status lifecycle.
type CodeAnalysisService struct {
	components ComponentStore
	fetcher    Fetcher
	ai         ai.Collaborator

	mu      sync.Mutex
	running map[string]struct{}
}

func NewCodeAnalysisService(components ComponentStore, fetcher Fetcher, collab ai.Collaborator) *CodeAnalysisService {
	return &CodeAnalysisService{
		components: components,
		fetcher:    fetcher,
		ai:         collab,
		running:    make(map[string]struct{}),
	}
}

// Analyze starts a background analysis of the component's source.
// ErrAlreadyRunning while a prior analysis for the component is in flight.
func (s *CodeAnalysisService) Analyze(ctx context.Context, userID, compID string) error {
	comp, err := s.components.GetByID(ctx, userID, compID)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(comp.Location, "http://") && !strings.HasPrefix(comp.Location, "https://") {
		return fmt.Errorf("component location is not fetchable: %w", appErr.ErrInvalid)
	}
	s.mu.Lock()
	if _, ok := s.running[compID]; ok {
		s.mu.Unlock()
		return appErr.ErrAlreadyRunning
	}
	s.running[compID] = struct{}{}
	s.mu.Unlock()

	if err := s.components.UpdateStatus(ctx, compID, model.StatusProcessing, timeutil.NowMilli()); err != nil {
		s.finish(compID)
		return err
	}
	go s.run(context.Background(), comp)
	return nil
}

func (s *CodeAnalysisService) finish(compID string) {
	s.mu.Lock()
	delete(s.running, compID)
	s.mu.Unlock()
}

func (s *CodeAnalysisService) run(ctx context.Context, comp *model.CodeComponent) {
	defer s.finish(comp.ID)
	logger := logutil.GetLogger(ctx).With(zap.String("component_id", comp.ID))

	source, err := s.fetcher.Fetch(ctx, comp.Location)
	if err != nil {
		logger.Error("failed to fetch component source", zap.String("location", comp.Location), zap.Error(err))
		s.fail(ctx, comp.ID)
		return
	}
	raw, err := s.ai.AnalyzeJSON(ctx, ai.ProfileCodeAnalysis, source)
	if err != nil {
		logger.Error("code analysis call failed", zap.Error(err))
		s.fail(ctx, comp.ID)
		return
	}
	result, err := ai.ParseCodeAnalysis(raw)
	if err != nil {
		logger.Error("code analysis response unusable", zap.Error(err))
		s.fail(ctx, comp.ID)
		return
	}
	if err := s.components.UpdateAnalysis(ctx, comp.ID, result.Summary, result.StructuredAnalysis, model.StatusCompleted, timeutil.NowMilli()); err != nil {
		logger.Error("failed to store code analysis", zap.Error(err))
		return
	}
	logger.Info("component analysis completed")
}

func (s *CodeAnalysisService) fail(ctx context.Context, compID string) {
	if err := s.components.UpdateStatus(ctx, compID, model.StatusFailed, timeutil.NowMilli()); err != nil {
		logutil.GetLogger(ctx).Error("failed to mark component failed",
			zap.String("component_id", compID), zap.Error(err))
	}
}
