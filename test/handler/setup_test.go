package handler_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/config"
	"github.com/muskan-shah-02/dokydoc/internal/filestore"
	"github.com/muskan-shah-02/dokydoc/internal/handler"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/jwt"
	"github.com/muskan-shah-02/dokydoc/internal/repo"
	"github.com/muskan-shah-02/dokydoc/internal/service"
	"github.com/muskan-shah-02/dokydoc/test/testutil"
)

// stubCollaborator serves canned JSON per analysis profile.
type stubCollaborator struct {
	mu      sync.Mutex
	replies map[ai.Profile]string
}

func (s *stubCollaborator) set(profile ai.Profile, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[profile] = raw
}

func (s *stubCollaborator) AnalyzeJSON(ctx context.Context, profile ai.Profile, input string) (json.RawMessage, error) {
	s.mu.Lock()
	raw, ok := s.replies[profile]
	s.mu.Unlock()
	if !ok {
		return nil, ai.ErrUnavailable
	}
	return json.RawMessage(raw), nil
}

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setupRouter(t *testing.T) (http.Handler, *stubCollaborator, string, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	docRepo := repo.NewDocumentRepo(db)
	segmentRepo := repo.NewSegmentRepo(db)
	resultRepo := repo.NewAnalysisResultRepo(db)
	componentRepo := repo.NewCodeComponentRepo(db)
	linkRepo := repo.NewLinkRepo(db)
	mismatchRepo := repo.NewMismatchRepo(db)

	collab := &stubCollaborator{replies: make(map[ai.Profile]string)}

	tmpDir, err := os.MkdirTemp("", "dokydoc-upload-*")
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": tmpDir},
	})
	require.NoError(t, err)

	documentService := service.NewDocumentService(docRepo, segmentRepo, resultRepo, linkRepo, mismatchRepo, store)
	analysisService := service.NewAnalysisService(docRepo, segmentRepo, resultRepo, collab)
	consolidationService := service.NewConsolidationService(docRepo, segmentRepo, resultRepo, collab)
	componentService := service.NewComponentService(componentRepo, linkRepo, mismatchRepo)
	codeAnalysisService := service.NewCodeAnalysisService(componentRepo, service.NewHTTPFetcher(), collab)
	linkService := service.NewLinkService(docRepo, componentRepo, linkRepo)
	validationService := service.NewValidationService(docRepo, componentRepo, linkRepo, mismatchRepo, collab)

	jwtSecret := []byte("test-secret")
	deps := handler.RouterDeps{
		Documents:  handler.NewDocumentHandler(documentService),
		Analysis:   handler.NewAnalysisHandler(analysisService, consolidationService),
		Components: handler.NewCodeComponentHandler(componentService, codeAnalysisService),
		Links:      handler.NewLinkHandler(linkService),
		Validation: handler.NewValidationHandler(validationService),
		JWTSecret:  jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
	)
	require.NoError(t, err)

	token, err := jwt.GenerateToken(newTestID(), "tester@example.com", jwtSecret, time.Hour)
	require.NoError(t, err)

	return engine, collab, token, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}
