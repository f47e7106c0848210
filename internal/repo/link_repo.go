package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

var linkFields = []string{"id", "document_id", "code_component_id", "ctime"}

type LinkRepo struct {
	db *sql.DB
}

func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) Create(ctx context.Context, link *model.DocumentCodeLink) error {
	data := map[string]interface{}{
		"id":                link.ID,
		"document_id":       link.DocumentID,
		"code_component_id": link.CodeComponentID,
		"ctime":             link.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("document_code_links", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, docID, compID string) error {
	sqlStr, args, err := builder.BuildDelete("document_code_links", map[string]interface{}{
		"document_id":       docID,
		"code_component_id": compID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rs, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if cnt, _ := rs.RowsAffected(); cnt == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) ListByDocument(ctx context.Context, docID string) ([]model.DocumentCodeLink, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("document_code_links", where, linkFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := make([]model.DocumentCodeLink, 0)
	for rows.Next() {
		var link model.DocumentCodeLink
		if err := rows.Scan(&link.ID, &link.DocumentID, &link.CodeComponentID, &link.Ctime); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *LinkRepo) DeleteByDocument(ctx context.Context, docID string) error {
	sqlStr, args, err := builder.BuildDelete("document_code_links", map[string]interface{}{
		"document_id": docID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *LinkRepo) DeleteByComponent(ctx context.Context, compID string) error {
	sqlStr, args, err := builder.BuildDelete("document_code_links", map[string]interface{}{
		"code_component_id": compID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
