package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

var analysisResultFields = []string{
	"id", "document_id", "segment_id", "consolidated", "structured_data", "ctime",
}

type AnalysisResultRepo struct {
	db *sql.DB
}

func NewAnalysisResultRepo(db *sql.DB) *AnalysisResultRepo {
	return &AnalysisResultRepo{db: db}
}

// UpsertSegmentResult replaces any prior result for the segment; a segment
// holds at most one non-consolidated result.
func (r *AnalysisResultRepo) UpsertSegmentResult(ctx context.Context, res *model.AnalysisResult) error {
	sqlStr, args, err := builder.BuildDelete("analysis_results", map[string]interface{}{
		"segment_id":   res.SegmentID,
		"consolidated": false,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	return r.insert(ctx, res)
}

// UpsertConsolidated replaces the document's cached consolidated result;
// a document holds at most one.
func (r *AnalysisResultRepo) UpsertConsolidated(ctx context.Context, res *model.AnalysisResult) error {
	sqlStr, args, err := builder.BuildDelete("analysis_results", map[string]interface{}{
		"document_id":  res.DocumentID,
		"consolidated": true,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	return r.insert(ctx, res)
}

func (r *AnalysisResultRepo) insert(ctx context.Context, res *model.AnalysisResult) error {
	data := map[string]interface{}{
		"id":              res.ID,
		"document_id":     res.DocumentID,
		"segment_id":      res.SegmentID,
		"consolidated":    res.Consolidated,
		"structured_data": []byte(res.StructuredData),
		"ctime":           res.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("analysis_results", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListByDocument returns the per-segment results for a document, oldest first.
func (r *AnalysisResultRepo) ListByDocument(ctx context.Context, docID string) ([]model.AnalysisResult, error) {
	where := map[string]interface{}{
		"document_id":  docID,
		"consolidated": false,
		"_orderby":     "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("analysis_results", where, analysisResultFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]model.AnalysisResult, 0)
	for rows.Next() {
		res, err := scanAnalysisResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

func (r *AnalysisResultRepo) GetConsolidated(ctx context.Context, docID string) (*model.AnalysisResult, error) {
	where := map[string]interface{}{
		"document_id":  docID,
		"consolidated": true,
	}
	sqlStr, args, err := builder.BuildSelect("analysis_results", where, analysisResultFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanAnalysisResult(rows)
}

// DeleteSegmentResults removes all per-segment results for a document; the
// cached consolidated result is left for explicit regeneration.
func (r *AnalysisResultRepo) DeleteSegmentResults(ctx context.Context, docID string) error {
	sqlStr, args, err := builder.BuildDelete("analysis_results", map[string]interface{}{
		"document_id":  docID,
		"consolidated": false,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanAnalysisResult(rows *sql.Rows) (*model.AnalysisResult, error) {
	var res model.AnalysisResult
	var data []byte
	if err := rows.Scan(&res.ID, &res.DocumentID, &res.SegmentID, &res.Consolidated, &data, &res.Ctime); err != nil {
		return nil, err
	}
	res.StructuredData = data
	return &res, nil
}
