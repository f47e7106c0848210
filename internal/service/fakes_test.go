package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

type fakeDocStore struct {
	mu    sync.Mutex
	docs  map[string]*model.Document
	trail map[string][]int
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:  make(map[string]*model.Document),
		trail: make(map[string][]int),
	}
}

func (f *fakeDocStore) Create(ctx context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocStore) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok || doc.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDocStore) List(ctx context.Context, userID string, limit, offset uint) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Document, 0)
	for _, doc := range f.docs {
		if doc.UserID == userID {
			out = append(out, *doc)
		}
	}
	if offset > 0 {
		if int(offset) >= len(out) {
			return []model.Document{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDocStore) UpdateStatusProgress(ctx context.Context, docID, status string, progress int, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok {
		return appErr.ErrNotFound
	}
	doc.Status = status
	doc.Progress = progress
	doc.Mtime = mtime
	f.trail[docID] = append(f.trail[docID], progress)
	return nil
}

func (f *fakeDocStore) UpdateStatus(ctx context.Context, docID, status string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok {
		return appErr.ErrNotFound
	}
	doc.Status = status
	doc.Mtime = mtime
	f.trail[docID] = append(f.trail[docID], doc.Progress)
	return nil
}

// progressTrail returns every progress value persisted for the document, in
// write order.
func (f *fakeDocStore) progressTrail(docID string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.trail[docID]...)
}

func (f *fakeDocStore) UpdateComposition(ctx context.Context, docID string, composition []byte, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok {
		return appErr.ErrNotFound
	}
	doc.Composition = append([]byte(nil), composition...)
	doc.Mtime = mtime
	return nil
}

func (f *fakeDocStore) Delete(ctx context.Context, userID, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok || doc.UserID != userID {
		return appErr.ErrNotFound
	}
	delete(f.docs, docID)
	return nil
}

func (f *fakeDocStore) get(docID string) model.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.docs[docID]
}

type fakeSegmentStore struct {
	mu       sync.Mutex
	segments []model.DocumentSegment
}

func (f *fakeSegmentStore) CreateBatch(ctx context.Context, segments []model.DocumentSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.segments = append(f.segments, segments...)
	return nil
}

func (f *fakeSegmentStore) ListByDocument(ctx context.Context, docID string) ([]model.DocumentSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.DocumentSegment, 0)
	for _, seg := range f.segments {
		if seg.DocumentID == docID {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (f *fakeSegmentStore) DeleteByDocument(ctx context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.segments[:0]
	for _, seg := range f.segments {
		if seg.DocumentID != docID {
			kept = append(kept, seg)
		}
	}
	f.segments = kept
	return nil
}

type fakeResultStore struct {
	mu      sync.Mutex
	results []model.AnalysisResult
}

func (f *fakeResultStore) UpsertSegmentResult(ctx context.Context, res *model.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.results[:0]
	for _, r := range f.results {
		if r.Consolidated || r.SegmentID != res.SegmentID {
			kept = append(kept, r)
		}
	}
	f.results = append(kept, *res)
	return nil
}

func (f *fakeResultStore) UpsertConsolidated(ctx context.Context, res *model.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.results[:0]
	for _, r := range f.results {
		if !r.Consolidated || r.DocumentID != res.DocumentID {
			kept = append(kept, r)
		}
	}
	f.results = append(kept, *res)
	return nil
}

func (f *fakeResultStore) ListByDocument(ctx context.Context, docID string) ([]model.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AnalysisResult, 0)
	for _, r := range f.results {
		if r.DocumentID == docID && !r.Consolidated {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) GetConsolidated(ctx context.Context, docID string) (*model.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.DocumentID == docID && r.Consolidated {
			cp := r
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (f *fakeResultStore) DeleteSegmentResults(ctx context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.results[:0]
	for _, r := range f.results {
		if r.DocumentID != docID || r.Consolidated {
			kept = append(kept, r)
		}
	}
	f.results = kept
	return nil
}

type fakeComponentStore struct {
	mu    sync.Mutex
	comps map[string]*model.CodeComponent
}

func newFakeComponentStore() *fakeComponentStore {
	return &fakeComponentStore{comps: make(map[string]*model.CodeComponent)}
}

func (f *fakeComponentStore) Create(ctx context.Context, comp *model.CodeComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *comp
	f.comps[comp.ID] = &cp
	return nil
}

func (f *fakeComponentStore) GetByID(ctx context.Context, userID, compID string) (*model.CodeComponent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp, ok := f.comps[compID]
	if !ok || comp.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	cp := *comp
	return &cp, nil
}

func (f *fakeComponentStore) Get(ctx context.Context, compID string) (*model.CodeComponent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp, ok := f.comps[compID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	cp := *comp
	return &cp, nil
}

func (f *fakeComponentStore) List(ctx context.Context, userID string, limit, offset uint) ([]model.CodeComponent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.CodeComponent, 0)
	for _, comp := range f.comps {
		if comp.UserID == userID {
			out = append(out, *comp)
		}
	}
	return out, nil
}

func (f *fakeComponentStore) UpdateAnalysis(ctx context.Context, compID, summary string, structured []byte, status string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp, ok := f.comps[compID]
	if !ok {
		return appErr.ErrNotFound
	}
	comp.Summary = summary
	comp.StructuredAnalysis = append([]byte(nil), structured...)
	comp.AnalysisStatus = status
	comp.Mtime = mtime
	return nil
}

func (f *fakeComponentStore) UpdateStatus(ctx context.Context, compID, status string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp, ok := f.comps[compID]
	if !ok {
		return appErr.ErrNotFound
	}
	comp.AnalysisStatus = status
	comp.Mtime = mtime
	return nil
}

func (f *fakeComponentStore) Delete(ctx context.Context, userID, compID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp, ok := f.comps[compID]
	if !ok || comp.UserID != userID {
		return appErr.ErrNotFound
	}
	delete(f.comps, compID)
	return nil
}

func (f *fakeComponentStore) get(compID string) model.CodeComponent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.comps[compID]
}

type fakeLinkStore struct {
	mu    sync.Mutex
	links []model.DocumentCodeLink
}

func (f *fakeLinkStore) Create(ctx context.Context, link *model.DocumentCodeLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.DocumentID == link.DocumentID && l.CodeComponentID == link.CodeComponentID {
			return appErr.ErrConflict
		}
	}
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeLinkStore) Delete(ctx context.Context, docID, compID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.links {
		if l.DocumentID == docID && l.CodeComponentID == compID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return appErr.ErrNotFound
}

func (f *fakeLinkStore) ListByDocument(ctx context.Context, docID string) ([]model.DocumentCodeLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.DocumentCodeLink, 0)
	for _, l := range f.links {
		if l.DocumentID == docID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinkStore) DeleteByDocument(ctx context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.links[:0]
	for _, l := range f.links {
		if l.DocumentID != docID {
			kept = append(kept, l)
		}
	}
	f.links = kept
	return nil
}

func (f *fakeLinkStore) DeleteByComponent(ctx context.Context, compID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.links[:0]
	for _, l := range f.links {
		if l.CodeComponentID != compID {
			kept = append(kept, l)
		}
	}
	f.links = kept
	return nil
}

type fakeMismatchStore struct {
	mu   sync.Mutex
	rows []model.Mismatch
}

func (f *fakeMismatchStore) Create(ctx context.Context, m *model.Mismatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMismatchStore) List(ctx context.Context, userID string, filter model.MismatchFilter) ([]model.MismatchView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.MismatchView, 0)
	for _, m := range f.rows {
		if m.UserID != userID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && m.Severity != filter.Severity {
			continue
		}
		if filter.MismatchType != "" && m.MismatchType != filter.MismatchType {
			continue
		}
		if filter.DocumentID != "" && m.DocumentID != filter.DocumentID {
			continue
		}
		out = append(out, model.MismatchView{Mismatch: m})
	}
	return out, nil
}

func (f *fakeMismatchStore) DeleteByDocument(ctx context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, m := range f.rows {
		if m.DocumentID != docID {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeMismatchStore) DeleteByComponent(ctx context.Context, compID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, m := range f.rows {
		if m.CodeComponentID != compID {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeMismatchStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeCollaborator routes each profile to a handler func so tests script the
// AI side without a network.
type fakeCollaborator struct {
	mu       sync.Mutex
	handlers map[ai.Profile]func(input string) (json.RawMessage, error)
	calls    map[ai.Profile]int
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{
		handlers: make(map[ai.Profile]func(input string) (json.RawMessage, error)),
		calls:    make(map[ai.Profile]int),
	}
}

func (f *fakeCollaborator) on(profile ai.Profile, handler func(input string) (json.RawMessage, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[profile] = handler
}

func (f *fakeCollaborator) reply(profile ai.Profile, raw string) {
	f.on(profile, func(string) (json.RawMessage, error) {
		return json.RawMessage(raw), nil
	})
}

func (f *fakeCollaborator) callCount(profile ai.Profile) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[profile]
}

func (f *fakeCollaborator) AnalyzeJSON(ctx context.Context, profile ai.Profile, input string) (json.RawMessage, error) {
	f.mu.Lock()
	handler := f.handlers[profile]
	f.calls[profile]++
	f.mu.Unlock()
	if handler == nil {
		return nil, ai.ErrUnavailable
	}
	return handler(input)
}
