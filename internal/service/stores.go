package service

import (
	"context"

	"github.com/muskan-shah-02/dokydoc/internal/model"
)

// The store interfaces mirror the repo method sets the services actually
// consume; the concrete repos in internal/repo satisfy them.

type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, userID, docID string) (*model.Document, error)
	List(ctx context.Context, userID string, limit, offset uint) ([]model.Document, error)
	UpdateStatusProgress(ctx context.Context, docID, status string, progress int, mtime int64) error
	UpdateStatus(ctx context.Context, docID, status string, mtime int64) error
	UpdateComposition(ctx context.Context, docID string, composition []byte, mtime int64) error
	Delete(ctx context.Context, userID, docID string) error
}

type SegmentStore interface {
	CreateBatch(ctx context.Context, segments []model.DocumentSegment) error
	ListByDocument(ctx context.Context, docID string) ([]model.DocumentSegment, error)
	DeleteByDocument(ctx context.Context, docID string) error
}

type ResultStore interface {
	UpsertSegmentResult(ctx context.Context, res *model.AnalysisResult) error
	UpsertConsolidated(ctx context.Context, res *model.AnalysisResult) error
	ListByDocument(ctx context.Context, docID string) ([]model.AnalysisResult, error)
	GetConsolidated(ctx context.Context, docID string) (*model.AnalysisResult, error)
	DeleteSegmentResults(ctx context.Context, docID string) error
}

type ComponentStore interface {
	Create(ctx context.Context, comp *model.CodeComponent) error
	GetByID(ctx context.Context, userID, compID string) (*model.CodeComponent, error)
	Get(ctx context.Context, compID string) (*model.CodeComponent, error)
	List(ctx context.Context, userID string, limit, offset uint) ([]model.CodeComponent, error)
	UpdateAnalysis(ctx context.Context, compID, summary string, structured []byte, status string, mtime int64) error
	UpdateStatus(ctx context.Context, compID, status string, mtime int64) error
	Delete(ctx context.Context, userID, compID string) error
}

type LinkStore interface {
	Create(ctx context.Context, link *model.DocumentCodeLink) error
	Delete(ctx context.Context, docID, compID string) error
	ListByDocument(ctx context.Context, docID string) ([]model.DocumentCodeLink, error)
	DeleteByDocument(ctx context.Context, docID string) error
	DeleteByComponent(ctx context.Context, compID string) error
}

type MismatchStore interface {
	Create(ctx context.Context, m *model.Mismatch) error
	List(ctx context.Context, userID string, filter model.MismatchFilter) ([]model.MismatchView, error)
	DeleteByDocument(ctx context.Context, docID string) error
	DeleteByComponent(ctx context.Context, compID string) error
}
