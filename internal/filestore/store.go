package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muskan-shah-02/dokydoc/internal/config"
)

// Store keeps the original uploaded document bytes; the extracted text lives
// in the database, the blob stays here for download and re-parsing.
type Store interface {
	Save(ctx context.Context, key string, r ReadSeekCloser, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

type Factory func(args interface{}) (Store, error)

// backends are filled from init funcs only, so no locking is needed.
var backends = map[string]Factory{}

func Register(name string, factory Factory) {
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" && factory != nil {
		backends[name] = factory
	}
}

func New(cfg config.FileStoreConfig) (Store, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Type))
	if name == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	return nil
}
