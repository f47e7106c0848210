package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/filestore"
	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/parser"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

const maxUploadBytes = 10 << 20

type DocumentService struct {
	docs       DocumentStore
	segments   SegmentStore
	results    ResultStore
	links      LinkStore
	mismatches MismatchStore
	store      filestore.Store
}

func NewDocumentService(docs DocumentStore, segments SegmentStore, results ResultStore, links LinkStore, mismatches MismatchStore, store filestore.Store) *DocumentService {
	return &DocumentService{
		docs:       docs,
		segments:   segments,
		results:    results,
		links:      links,
		mismatches: mismatches,
		store:      store,
	}
}

// Upload stores the original file, extracts its text and registers the
// document as pending. Extraction happens here so the pipeline later works
// on plain text only.
func (s *DocumentService) Upload(ctx context.Context, userID, filename, documentType, version string, file filestore.ReadSeekCloser, size int64) (*model.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("filename is required: %w", appErr.ErrInvalid)
	}
	if strings.TrimSpace(documentType) == "" {
		return nil, fmt.Errorf("document_type is required: %w", appErr.ErrInvalid)
	}
	if size <= 0 || size > maxUploadBytes {
		return nil, fmt.Errorf("unsupported upload size %d: %w", size, appErr.ErrInvalid)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, err
	}
	rawText, err := parser.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), appErr.ErrInvalid)
	}

	docID := newID()
	storageKey := docID + keyExt(filename)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, storageKey, file, size); err != nil {
		return nil, err
	}
	now := timeutil.NowMilli()
	doc := &model.Document{
		ID:           docID,
		UserID:       userID,
		Filename:     filename,
		DocumentType: documentType,
		Version:      version,
		StorageKey:   storageKey,
		RawText:      rawText,
		Status:       model.StatusPending,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func keyExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	ext := strings.ToLower(filename[idx:])
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func (s *DocumentService) List(ctx context.Context, userID string, limit, offset uint) ([]model.Document, error) {
	return s.docs.List(ctx, userID, limit, offset)
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

// Delete removes the document and everything derived from it: mismatches,
// links, segments, results, then the stored blob.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.mismatches.DeleteByDocument(ctx, docID); err != nil {
		return err
	}
	if err := s.links.DeleteByDocument(ctx, docID); err != nil {
		return err
	}
	if err := s.results.DeleteSegmentResults(ctx, docID); err != nil {
		return err
	}
	if err := s.segments.DeleteByDocument(ctx, docID); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, userID, docID); err != nil {
		return err
	}
	if doc.StorageKey != "" {
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
			logutil.GetLogger(ctx).Warn("failed to remove stored file",
				zap.String("storage_key", doc.StorageKey), zap.Error(err))
		}
	}
	return nil
}
