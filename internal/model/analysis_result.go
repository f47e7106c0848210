package model

import "encoding/json"

// AnalysisResult holds the structured output of one extraction call.
// SegmentID scopes it to a single segment; Consolidated scopes it to the
// whole document instead (SegmentID empty).
type AnalysisResult struct {
	ID             string          `json:"id"`
	DocumentID     string          `json:"document_id"`
	SegmentID      string          `json:"segment_id,omitempty"`
	Consolidated   bool            `json:"consolidated"`
	StructuredData json.RawMessage `json:"structured_data"`
	Ctime          int64           `json:"ctime"`
}

// SegmentAnalysis pairs a segment with its result for the combined read.
type SegmentAnalysis struct {
	Segment DocumentSegment `json:"segment"`
	Result  *AnalysisResult `json:"analysis_result"`
}

// AnalysisStats is the per-document aggregate returned alongside the
// combined analysis view.
type AnalysisStats struct {
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}
