package model

const (
	MismatchStatusNew          = "new"
	MismatchStatusAcknowledged = "acknowledged"
	MismatchStatusResolved     = "resolved"

	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

type MismatchDetails struct {
	Expected         string `json:"expected"`
	Actual           string `json:"actual"`
	EvidenceDocument string `json:"evidence_document"`
	EvidenceCode     string `json:"evidence_code"`
	SuggestedAction  string `json:"suggested_action"`
}

type Mismatch struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	DocumentID      string          `json:"document_id"`
	CodeComponentID string          `json:"code_component_id"`
	MismatchType    string          `json:"mismatch_type"`
	Description     string          `json:"description"`
	Severity        string          `json:"severity"`
	Confidence      string          `json:"confidence"`
	Status          string          `json:"status"`
	Details         MismatchDetails `json:"details"`
	DetectedAt      int64           `json:"detected_at"`
}

// MismatchView adds the display names the dashboard lists alongside each
// mismatch, resolved in one query instead of per row.
type MismatchView struct {
	Mismatch
	DocumentFilename  string `json:"document_filename"`
	CodeComponentName string `json:"code_component_name"`
}

// MismatchFilter narrows ListMismatches; zero values mean no constraint.
type MismatchFilter struct {
	Status       string
	Severity     string
	MismatchType string
	DocumentID   string
	Limit        uint
	Offset       uint
}
