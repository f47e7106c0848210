package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
)

var segmentFields = []string{
	"id", "document_id", "segment_type", "start_char_index", "end_char_index", "position", "ctime",
}

type SegmentRepo struct {
	db *sql.DB
}

func NewSegmentRepo(db *sql.DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

func (r *SegmentRepo) CreateBatch(ctx context.Context, segments []model.DocumentSegment) error {
	if len(segments) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(segments))
	for _, seg := range segments {
		data = append(data, map[string]interface{}{
			"id":               seg.ID,
			"document_id":      seg.DocumentID,
			"segment_type":     seg.SegmentType,
			"start_char_index": seg.StartCharIndex,
			"end_char_index":   seg.EndCharIndex,
			"position":         seg.Position,
			"ctime":            seg.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("document_segments", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListByDocument returns segments in creation order.
func (r *SegmentRepo) ListByDocument(ctx context.Context, docID string) ([]model.DocumentSegment, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "position asc",
	}
	sqlStr, args, err := builder.BuildSelect("document_segments", where, segmentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	segments := make([]model.DocumentSegment, 0)
	for rows.Next() {
		var seg model.DocumentSegment
		if err := rows.Scan(&seg.ID, &seg.DocumentID, &seg.SegmentType, &seg.StartCharIndex, &seg.EndCharIndex, &seg.Position, &seg.Ctime); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (r *SegmentRepo) DeleteByDocument(ctx context.Context, docID string) error {
	sqlStr, args, err := builder.BuildDelete("document_segments", map[string]interface{}{"document_id": docID})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
