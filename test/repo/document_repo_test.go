package repo_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
	"github.com/muskan-shah-02/dokydoc/internal/repo"
	"github.com/muskan-shah-02/dokydoc/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func seedDoc(t *testing.T, docs *repo.DocumentRepo, userID string) *model.Document {
	t.Helper()
	now := timeutil.NowMilli()
	doc := &model.Document{
		ID:           newTestID(),
		UserID:       userID,
		Filename:     "reqs.md",
		DocumentType: "SRS",
		Version:      "1.0",
		StorageKey:   newTestID() + ".md",
		RawText:      "The system shall do things.",
		Status:       model.StatusPending,
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, docs.Create(context.Background(), doc))
	return doc
}

func TestDocumentRepoCRUDAndIsolation(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	userID := newTestID()
	doc := seedDoc(t, docs, userID)

	fetched, err := docs.GetByID(context.Background(), userID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "reqs.md", fetched.Filename)
	require.Equal(t, model.StatusPending, fetched.Status)
	require.Empty(t, fetched.Composition)

	// other users never see the document
	_, err = docs.GetByID(context.Background(), newTestID(), doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	listed, err := docs.List(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, docs.Delete(context.Background(), userID, doc.ID))
	_, err = docs.GetByID(context.Background(), userID, doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepoStatusAndComposition(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	userID := newTestID()
	doc := seedDoc(t, docs, userID)
	defer func() { _ = docs.Delete(context.Background(), userID, doc.ID) }()

	composition := json.RawMessage(`{"composition": {"SRS": 90, "UNKNOWN": 10}, "confidence": "high"}`)
	require.NoError(t, docs.UpdateComposition(context.Background(), doc.ID, composition, timeutil.NowMilli()))
	require.NoError(t, docs.UpdateStatusProgress(context.Background(), doc.ID, model.StatusProcessing, 40, timeutil.NowMilli()))

	fetched, err := docs.GetByID(context.Background(), userID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusProcessing, fetched.Status)
	require.Equal(t, 40, fetched.Progress)
	require.JSONEq(t, string(composition), string(fetched.Composition))

	// a status-only update leaves progress where the pipeline last put it
	require.NoError(t, docs.UpdateStatus(context.Background(), doc.ID, model.StatusFailed, timeutil.NowMilli()))
	fetched, err = docs.GetByID(context.Background(), userID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusFailed, fetched.Status)
	require.Equal(t, 40, fetched.Progress)

	require.ErrorIs(t, docs.UpdateStatusProgress(context.Background(), newTestID(), model.StatusFailed, 0, timeutil.NowMilli()), appErr.ErrNotFound)
	require.ErrorIs(t, docs.UpdateStatus(context.Background(), newTestID(), model.StatusFailed, timeutil.NowMilli()), appErr.ErrNotFound)
}

func TestDocumentRepoFailStale(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	userID := newTestID()
	stale := seedDoc(t, docs, userID)
	fresh := seedDoc(t, docs, userID)
	defer func() {
		_ = docs.Delete(context.Background(), userID, stale.ID)
		_ = docs.Delete(context.Background(), userID, fresh.ID)
	}()

	longAgo := timeutil.NowMilli() - 10*60*60*1000
	require.NoError(t, docs.UpdateStatusProgress(context.Background(), stale.ID, model.StatusProcessing, 50, longAgo))
	require.NoError(t, docs.UpdateStatusProgress(context.Background(), fresh.ID, model.StatusProcessing, 50, timeutil.NowMilli()))

	cutoff := timeutil.NowMilli() - 6*60*60*1000
	reaped, err := docs.FailStale(context.Background(), cutoff, timeutil.NowMilli())
	require.NoError(t, err)
	require.GreaterOrEqual(t, reaped, int64(1))

	got, err := docs.GetByID(context.Background(), userID, stale.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusFailed, got.Status)

	got, err = docs.GetByID(context.Background(), userID, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusProcessing, got.Status)
}
