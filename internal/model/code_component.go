package model

import "encoding/json"

const (
	ComponentTypeRepository = "Repository"
	ComponentTypeFile       = "File"
	ComponentTypeClass      = "Class"
	ComponentTypeFunction   = "Function"
)

type CodeComponent struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	Name               string          `json:"name"`
	ComponentType      string          `json:"component_type"`
	Location           string          `json:"location"`
	Version            string          `json:"version"`
	Summary            string          `json:"summary,omitempty"`
	StructuredAnalysis json.RawMessage `json:"structured_analysis,omitempty"`
	AnalysisStatus     string          `json:"analysis_status"`
	Ctime              int64           `json:"ctime"`
	Mtime              int64           `json:"mtime"`
}
