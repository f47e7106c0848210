package model

// DocumentCodeLink authorizes comparison between a document and a code
// component. The pair is unique.
type DocumentCodeLink struct {
	ID              string `json:"id"`
	DocumentID      string `json:"document_id"`
	CodeComponentID string `json:"code_component_id"`
	Ctime           int64  `json:"ctime"`
}
