package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

var documentFields = []string{
	"id", "user_id", "filename", "document_type", "version",
	"storage_key", "raw_text", "composition", "status", "progress", "ctime", "mtime",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":            doc.ID,
		"user_id":       doc.UserID,
		"filename":      doc.Filename,
		"document_type": doc.DocumentType,
		"version":       doc.Version,
		"storage_key":   doc.StorageKey,
		"raw_text":      doc.RawText,
		"status":        doc.Status,
		"progress":      doc.Progress,
		"ctime":         doc.Ctime,
		"mtime":         doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
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
	return scanDocument(rows)
}

func (r *DocumentRepo) List(ctx context.Context, userID string, limit, offset uint) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// UpdateStatusProgress writes status and progress in one statement so a
// concurrent poller never observes a torn pair.
func (r *DocumentRepo) UpdateStatusProgress(ctx context.Context, docID, status string, progress int, mtime int64) error {
	where := map[string]interface{}{
		"id": docID,
	}
	update := map[string]interface{}{
		"status":   status,
		"progress": progress,
		"mtime":    mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// UpdateStatus changes only the status, leaving progress at whatever the
// pipeline last reported.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, docID, status string, mtime int64) error {
	where := map[string]interface{}{
		"id": docID,
	}
	update := map[string]interface{}{
		"status": status,
		"mtime":  mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) UpdateComposition(ctx context.Context, docID string, composition []byte, mtime int64) error {
	where := map[string]interface{}{
		"id": docID,
	}
	update := map[string]interface{}{
		"composition": composition,
		"mtime":       mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, userID, docID string) error {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildDelete("documents", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// FailStale moves documents stuck in processing with no activity since the
// cutoff to failed. Used by the reaper job.
func (r *DocumentRepo) FailStale(ctx context.Context, cutoff int64, now int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, mtime = $2 WHERE status = $3 AND mtime < $4`,
		model.StatusFailed, now, model.StatusProcessing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var doc model.Document
	var composition []byte
	if err := rows.Scan(
		&doc.ID, &doc.UserID, &doc.Filename, &doc.DocumentType, &doc.Version,
		&doc.StorageKey, &doc.RawText, &composition, &doc.Status, &doc.Progress,
		&doc.Ctime, &doc.Mtime,
	); err != nil {
		return nil, err
	}
	if len(composition) > 0 {
		doc.Composition = composition
	}
	return &doc, nil
}
