package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
)

type ComponentService struct {
	components ComponentStore
	links      LinkStore
	mismatches MismatchStore
}

func NewComponentService(components ComponentStore, links LinkStore, mismatches MismatchStore) *ComponentService {
	return &ComponentService{components: components, links: links, mismatches: mismatches}
}

var validComponentTypes = map[string]struct{}{
	model.ComponentTypeRepository: {},
	model.ComponentTypeFile:       {},
	model.ComponentTypeClass:      {},
	model.ComponentTypeFunction:   {},
}

func (s *ComponentService) Create(ctx context.Context, userID, name, componentType, location, version string) (*model.CodeComponent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required: %w", appErr.ErrInvalid)
	}
	if _, ok := validComponentTypes[componentType]; !ok {
		return nil, fmt.Errorf("unknown component_type %q: %w", componentType, appErr.ErrInvalid)
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location is required: %w", appErr.ErrInvalid)
	}
	now := timeutil.NowMilli()
	comp := &model.CodeComponent{
		ID:             newID(),
		UserID:         userID,
		Name:           name,
		ComponentType:  componentType,
		Location:       location,
		Version:        version,
		AnalysisStatus: model.StatusPending,
		Ctime:          now,
		Mtime:          now,
	}
	if err := s.components.Create(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (s *ComponentService) List(ctx context.Context, userID string, limit, offset uint) ([]model.CodeComponent, error) {
	return s.components.List(ctx, userID, limit, offset)
}

func (s *ComponentService) Get(ctx context.Context, userID, compID string) (*model.CodeComponent, error) {
	return s.components.GetByID(ctx, userID, compID)
}

// Delete removes the component along with its mismatches and links.
func (s *ComponentService) Delete(ctx context.Context, userID, compID string) error {
	if _, err := s.components.GetByID(ctx, userID, compID); err != nil {
		return err
	}
	if err := s.mismatches.DeleteByComponent(ctx, compID); err != nil {
		return err
	}
	if err := s.links.DeleteByComponent(ctx, compID); err != nil {
		return err
	}
	return s.components.Delete(ctx, userID, compID)
}
