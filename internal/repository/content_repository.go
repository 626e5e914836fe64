package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// ContentRepo stores the free-text blocks of the public pages.
type ContentRepo struct {
	db *sqlx.DB
}

func NewContentRepo(db *sqlx.DB) *ContentRepo { return &ContentRepo{db: db} }

const contentColumns = "id, section, title, description, image_url, created_at, updated_at"

type ContentQuery struct {
	Section string
	Search  string
	Limit   int
	Offset  int
}

type ContentPatch struct {
	Section     *string
	Title       *string
	Description *string
	ImageURL    *string
}

func (r *ContentRepo) Get(ctx context.Context, id uint64) (*model.Content, error) {
	var c model.Content
	if err := r.db.GetContext(ctx, &c, "SELECT "+contentColumns+" FROM content WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepo) List(ctx context.Context, q ContentQuery) ([]model.Content, error) {
	where := []string{}
	args := []any{}
	if q.Section != "" {
		where = append(where, "section = ?")
		args = append(args, q.Section)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		p := likePattern(q.Search)
		args = append(args, p, p)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(q.Limit, 50, 100), max(q.Offset, 0))
	out := []model.Content{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+contentColumns+" FROM content WHERE "+cond+" ORDER BY section, created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ContentRepo) Create(ctx context.Context, c model.Content) (*model.Content, error) {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO content (section, title, description, image_url, created_at, updated_at)
		 VALUES (:section, :title, :description, :image_url, :created_at, :updated_at)`, c)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id))
}

func (r *ContentRepo) Update(ctx context.Context, id uint64, p ContentPatch) (*model.Content, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if p.Section != nil {
		sets = append(sets, "section = ?")
		args = append(args, *p.Section)
	}
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, nullIfEmpty(*p.ImageURL))
	}
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE content SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *ContentRepo) Delete(ctx context.Context, id uint64) (*model.Content, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM content WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}
	return c, nil
}
