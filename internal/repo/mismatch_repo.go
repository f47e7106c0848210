package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
)

type MismatchRepo struct {
	db *sql.DB
}

func NewMismatchRepo(db *sql.DB) *MismatchRepo {
	return &MismatchRepo{db: db}
}

func (r *MismatchRepo) Create(ctx context.Context, m *model.Mismatch) error {
	details, err := json.Marshal(m.Details)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":                m.ID,
		"user_id":           m.UserID,
		"document_id":       m.DocumentID,
		"code_component_id": m.CodeComponentID,
		"mismatch_type":     m.MismatchType,
		"description":       m.Description,
		"severity":          m.Severity,
		"confidence":        m.Confidence,
		"status":            m.Status,
		"details":           details,
		"detected_at":       m.DetectedAt,
	}
	sqlStr, args, err := builder.BuildInsert("mismatches", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// List returns the owner's mismatches joined with document and component
// names so callers get a display-ready row, newest detection first.
func (r *MismatchRepo) List(ctx context.Context, userID string, filter model.MismatchFilter) ([]model.MismatchView, error) {
	query := `SELECT m.id, m.user_id, m.document_id, m.code_component_id, m.mismatch_type,
		m.description, m.severity, m.confidence, m.status, m.details, m.detected_at,
		d.filename, c.name
		FROM mismatches m
		JOIN documents d ON d.id = m.document_id
		JOIN code_components c ON c.id = m.code_component_id
		WHERE m.user_id = ?`
	args := []interface{}{userID}
	if filter.Status != "" {
		query += " AND m.status = ?"
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		query += " AND m.severity = ?"
		args = append(args, filter.Severity)
	}
	if filter.MismatchType != "" {
		query += " AND m.mismatch_type = ?"
		args = append(args, filter.MismatchType)
	}
	if filter.DocumentID != "" {
		query += " AND m.document_id = ?"
		args = append(args, filter.DocumentID)
	}
	query += " ORDER BY m.detected_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]model.MismatchView, 0)
	for rows.Next() {
		var v model.MismatchView
		var details []byte
		if err := rows.Scan(&v.ID, &v.UserID, &v.DocumentID, &v.CodeComponentID, &v.MismatchType,
			&v.Description, &v.Severity, &v.Confidence, &v.Status, &details, &v.DetectedAt,
			&v.DocumentFilename, &v.CodeComponentName); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &v.Details); err != nil {
				return nil, err
			}
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *MismatchRepo) DeleteByDocument(ctx context.Context, docID string) error {
	sqlStr, args, err := builder.BuildDelete("mismatches", map[string]interface{}{
		"document_id": docID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *MismatchRepo) DeleteByComponent(ctx context.Context, compID string) error {
	sqlStr, args, err := builder.BuildDelete("mismatches", map[string]interface{}{
		"code_component_id": compID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
