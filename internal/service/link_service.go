package service

import (
	"context"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

// LinkService manages the document-to-component associations the validation
// scan walks. Both endpoints must belong to the caller.
type LinkService struct {
	docs       DocumentStore
	components ComponentStore
	links      LinkStore
}

func NewLinkService(docs DocumentStore, components ComponentStore, links LinkStore) *LinkService {
	return &LinkService{docs: docs, components: components, links: links}
}

// Create links a document to a component; ErrConflict when the pair is
// already linked.
func (s *LinkService) Create(ctx context.Context, userID, docID, compID string) (*model.DocumentCodeLink, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	if _, err := s.components.GetByID(ctx, userID, compID); err != nil {
		return nil, err
	}
	link := &model.DocumentCodeLink{
		ID:              newID(),
		DocumentID:      docID,
		CodeComponentID: compID,
		Ctime:           timeutil.NowMilli(),
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) Delete(ctx context.Context, userID, docID, compID string) error {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return err
	}
	return s.links.Delete(ctx, docID, compID)
}

func (s *LinkService) ListByDocument(ctx context.Context, userID, docID string) ([]model.DocumentCodeLink, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	return s.links.ListByDocument(ctx, docID)
}
