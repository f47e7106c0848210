package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

func TestConsolidation_NothingToMerge(t *testing.T) {
	docs := newFakeDocStore()
	seedDocument(t, docs, "text")
	svc := NewConsolidationService(docs, &fakeSegmentStore{}, &fakeResultStore{}, newFakeCollaborator())

	_, err := svc.Generate(context.Background(), testUser, "doc-1", true)
	require.ErrorIs(t, err, appErr.ErrNothingToMerge)
}

func TestConsolidation_GenerateAndCache(t *testing.T) {
	docs := newFakeDocStore()
	segments := &fakeSegmentStore{}
	results := &fakeResultStore{}
	collab := newFakeCollaborator()
	seedDocument(t, docs, "text")

	require.NoError(t, segments.CreateBatch(context.Background(), []model.DocumentSegment{
		{ID: "s1", DocumentID: "doc-1", SegmentType: "requirements"},
		{ID: "s2", DocumentID: "doc-1", SegmentType: "security"},
	}))
	require.NoError(t, results.UpsertSegmentResult(context.Background(), &model.AnalysisResult{
		ID: "r1", DocumentID: "doc-1", SegmentID: "s1",
		StructuredData: json.RawMessage(`{"requirements": ["R1"]}`),
	}))
	require.NoError(t, results.UpsertSegmentResult(context.Background(), &model.AnalysisResult{
		ID: "r2", DocumentID: "doc-1", SegmentID: "s2",
		StructuredData: json.RawMessage(`{"requirements": ["R2"]}`),
	}))

	var sawInput string
	collab.on(ai.ProfileConsolidation, func(input string) (json.RawMessage, error) {
		sawInput = input
		return json.RawMessage(`{"requirements": ["R1", "R2"]}`), nil
	})

	svc := NewConsolidationService(docs, segments, results, collab)
	// nothing cached before the first explicit generate
	_, err := svc.GetCached(context.Background(), testUser, "doc-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	merged, err := svc.Generate(context.Background(), testUser, "doc-1", true)
	require.NoError(t, err)
	require.True(t, merged.Consolidated)
	require.JSONEq(t, `{"requirements": ["R1", "R2"]}`, string(merged.StructuredData))
	// both segment results went into the merge call, tagged with their types
	require.Contains(t, sawInput, "R1")
	require.Contains(t, sawInput, "R2")
	require.Contains(t, sawInput, `"segment_type":"requirements"`)
	require.Contains(t, sawInput, `"segment_type":"security"`)

	cached, err := svc.GetCached(context.Background(), testUser, "doc-1")
	require.NoError(t, err)
	require.Equal(t, merged.ID, cached.ID)
}

func TestConsolidation_RegenerateReplacesCache(t *testing.T) {
	docs := newFakeDocStore()
	segments := &fakeSegmentStore{}
	results := &fakeResultStore{}
	collab := newFakeCollaborator()
	seedDocument(t, docs, "text")

	require.NoError(t, segments.CreateBatch(context.Background(), []model.DocumentSegment{
		{ID: "s1", DocumentID: "doc-1", SegmentType: "requirements"},
	}))
	require.NoError(t, results.UpsertSegmentResult(context.Background(), &model.AnalysisResult{
		ID: "r1", DocumentID: "doc-1", SegmentID: "s1",
		StructuredData: json.RawMessage(`{"v": 1}`),
	}))
	collab.reply(ai.ProfileConsolidation, `{"merged": 1}`)

	svc := NewConsolidationService(docs, segments, results, collab)
	first, err := svc.Generate(context.Background(), testUser, "doc-1", true)
	require.NoError(t, err)

	collab.reply(ai.ProfileConsolidation, `{"merged": 2}`)
	second, err := svc.Generate(context.Background(), testUser, "doc-1", true)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	cached, err := svc.GetCached(context.Background(), testUser, "doc-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"merged": 2}`, string(cached.StructuredData))
}

func TestConsolidation_PreviewSkipsCache(t *testing.T) {
	docs := newFakeDocStore()
	segments := &fakeSegmentStore{}
	results := &fakeResultStore{}
	collab := newFakeCollaborator()
	seedDocument(t, docs, "text")

	require.NoError(t, segments.CreateBatch(context.Background(), []model.DocumentSegment{
		{ID: "s1", DocumentID: "doc-1", SegmentType: "requirements"},
	}))
	require.NoError(t, results.UpsertSegmentResult(context.Background(), &model.AnalysisResult{
		ID: "r1", DocumentID: "doc-1", SegmentID: "s1",
		StructuredData: json.RawMessage(`{"v": 1}`),
	}))
	collab.reply(ai.ProfileConsolidation, `{"merged": 1}`)

	svc := NewConsolidationService(docs, segments, results, collab)
	merged, err := svc.Generate(context.Background(), testUser, "doc-1", false)
	require.NoError(t, err)
	require.JSONEq(t, `{"merged": 1}`, string(merged.StructuredData))

	_, err = svc.GetCached(context.Background(), testUser, "doc-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestConsolidation_UnknownDocument(t *testing.T) {
	svc := NewConsolidationService(newFakeDocStore(), &fakeSegmentStore{}, &fakeResultStore{}, newFakeCollaborator())
	_, err := svc.GetCached(context.Background(), testUser, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = svc.Generate(context.Background(), testUser, "missing", true)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
