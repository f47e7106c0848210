package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/muskan-shah-02/dokydoc/internal/model"
	"github.com/muskan-shah-02/dokydoc/internal/pkg/dbutil"
	appErr "github.com/muskan-shah-02/dokydoc/internal/pkg/errors"
)

var codeComponentFields = []string{
	"id", "user_id", "name", "component_type", "location", "version",
	"summary", "structured_analysis", "analysis_status", "ctime", "mtime",
}

type CodeComponentRepo struct {
	db *sql.DB
}

func NewCodeComponentRepo(db *sql.DB) *CodeComponentRepo {
	return &CodeComponentRepo{db: db}
}

func (r *CodeComponentRepo) Create(ctx context.Context, comp *model.CodeComponent) error {
	data := map[string]interface{}{
		"id":                  comp.ID,
		"user_id":             comp.UserID,
		"name":                comp.Name,
		"component_type":      comp.ComponentType,
		"location":            comp.Location,
		"version":             comp.Version,
		"summary":             comp.Summary,
		"structured_analysis": []byte(comp.StructuredAnalysis),
		"analysis_status":     comp.AnalysisStatus,
		"ctime":               comp.Ctime,
		"mtime":               comp.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("code_components", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CodeComponentRepo) GetByID(ctx context.Context, userID, compID string) (*model.CodeComponent, error) {
	where := map[string]interface{}{
		"id":      compID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("code_components", where, codeComponentFields)
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
	return scanCodeComponent(rows)
}

// Get fetches a component without an owner check, for background scans that
// run outside a request context.
func (r *CodeComponentRepo) Get(ctx context.Context, compID string) (*model.CodeComponent, error) {
	where := map[string]interface{}{
		"id": compID,
	}
	sqlStr, args, err := builder.BuildSelect("code_components", where, codeComponentFields)
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
	return scanCodeComponent(rows)
}

func (r *CodeComponentRepo) List(ctx context.Context, userID string, limit, offset uint) ([]model.CodeComponent, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{offset, limit},
	}
	sqlStr, args, err := builder.BuildSelect("code_components", where, codeComponentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comps := make([]model.CodeComponent, 0)
	for rows.Next() {
		comp, err := scanCodeComponent(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, *comp)
	}
	return comps, rows.Err()
}

func (r *CodeComponentRepo) UpdateAnalysis(ctx context.Context, compID, summary string, structured []byte, status string, mtime int64) error {
	where := map[string]interface{}{"id": compID}
	update := map[string]interface{}{
		"summary":             summary,
		"structured_analysis": structured,
		"analysis_status":     status,
		"mtime":               mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("code_components", where, update)
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

func (r *CodeComponentRepo) UpdateStatus(ctx context.Context, compID, status string, mtime int64) error {
	where := map[string]interface{}{"id": compID}
	update := map[string]interface{}{
		"analysis_status": status,
		"mtime":           mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("code_components", where, update)
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

func (r *CodeComponentRepo) Delete(ctx context.Context, userID, compID string) error {
	sqlStr, args, err := builder.BuildDelete("code_components", map[string]interface{}{
		"id":      compID,
		"user_id": userID,
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

func scanCodeComponent(rows *sql.Rows) (*model.CodeComponent, error) {
	var comp model.CodeComponent
	var structured []byte
	if err := rows.Scan(&comp.ID, &comp.UserID, &comp.Name, &comp.ComponentType, &comp.Location,
		&comp.Version, &comp.Summary, &structured, &comp.AnalysisStatus, &comp.Ctime, &comp.Mtime); err != nil {
		return nil, err
	}
	if len(structured) > 0 {
		comp.StructuredAnalysis = structured
	}
	return &comp, nil
}
