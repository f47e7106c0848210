package model

import "encoding/json"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Document struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Filename     string          `json:"filename"`
	DocumentType string          `json:"document_type"`
	Version      string          `json:"version"`
	StorageKey   string          `json:"storage_key"`
	RawText      string          `json:"raw_text"`
	Composition  json.RawMessage `json:"composition_analysis,omitempty"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Ctime        int64           `json:"ctime"`
	Mtime        int64           `json:"mtime"`
}
