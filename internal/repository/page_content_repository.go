package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// PageContentRepo stores structured page fields.
type PageContentRepo struct {
	db *sqlx.DB
}

func NewPageContentRepo(db *sqlx.DB) *PageContentRepo { return &PageContentRepo{db: db} }

const pageContentColumns = "id, page, section, content_type, field_name, field_value, display_order, created_at, updated_at"

type PageContentQuery struct {
	Page    string
	Section string
	Limit   int
	Offset  int
}

type PageContentPatch struct {
	Page         *string
	Section      *string
	ContentType  *string
	FieldName    *string
	FieldValue   *string
	DisplayOrder *int
}

func (r *PageContentRepo) Get(ctx context.Context, id uint64) (*model.PageContent, error) {
	var pc model.PageContent
	if err := r.db.GetContext(ctx, &pc, "SELECT "+pageContentColumns+" FROM page_contents WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &pc, nil
}

// List orders by page, section and display order so a section renders in
// sequence.
func (r *PageContentRepo) List(ctx context.Context, q PageContentQuery) ([]model.PageContent, error) {
	where := []string{}
	args := []any{}
	if q.Page != "" {
		where = append(where, "page = ?")
		args = append(args, q.Page)
	}
	if q.Section != "" {
		where = append(where, "section = ?")
		args = append(args, q.Section)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(q.Limit, 100, 200), max(q.Offset, 0))
	out := []model.PageContent{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+pageContentColumns+" FROM page_contents WHERE "+cond+
			" ORDER BY page, section, display_order, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PageContentRepo) Create(ctx context.Context, pc model.PageContent) (*model.PageContent, error) {
	now := time.Now().UTC()
	pc.CreatedAt, pc.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO page_contents (page, section, content_type, field_name, field_value, display_order, created_at, updated_at)
		 VALUES (:page, :section, :content_type, :field_name, :field_value, :display_order, :created_at, :updated_at)`, pc)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id))
}

func (r *PageContentRepo) Update(ctx context.Context, id uint64, p PageContentPatch) (*model.PageContent, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Page != nil {
		add("page", *p.Page)
	}
	if p.Section != nil {
		add("section", *p.Section)
	}
	if p.ContentType != nil {
		add("content_type", *p.ContentType)
	}
	if p.FieldName != nil {
		add("field_name", *p.FieldName)
	}
	if p.FieldValue != nil {
		add("field_value", nullIfEmpty(*p.FieldValue))
	}
	if p.DisplayOrder != nil {
		add("display_order", *p.DisplayOrder)
	}
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE page_contents SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *PageContentRepo) Delete(ctx context.Context, id uint64) (*model.PageContent, error) {
	pc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM page_contents WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}
	return pc, nil
}
