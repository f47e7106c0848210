package model

// DocumentSegment is a contiguous character span of a document's raw text,
// tagged with the content type the composition pass identified.
type DocumentSegment struct {
	ID             string `json:"id"`
	DocumentID     string `json:"document_id"`
	SegmentType    string `json:"segment_type"`
	StartCharIndex int    `json:"start_char_index"`
	EndCharIndex   int    `json:"end_char_index"`
	Position       int    `json:"position"`
	Ctime          int64  `json:"ctime"`
}
