package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// DishRepo encapsulates the queries for the menu.
type DishRepo struct {
	db *sqlx.DB
}

func NewDishRepo(db *sqlx.DB) *DishRepo { return &DishRepo{db: db} }

const dishColumns = "id, name, description, category, price, image_url, is_available, style, created_at, updated_at"

// DishQuery defines filters and pagination for listing dishes.
type DishQuery struct {
	Search    string
	Category  string
	Available *bool
	Style     string
	Limit     int
	Offset    int
}

// DishPatch carries the fields of a partial update.  Nil fields are left
// untouched.
type DishPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *string
	ImageURL    *string
	IsAvailable *bool
	Style       *string
}

func (r *DishRepo) Get(ctx context.Context, id uint64) (*model.Dish, error) {
	var d model.Dish
	if err := r.db.GetContext(ctx, &d, "SELECT "+dishColumns+" FROM dishes WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns dishes ordered by category then name.
func (r *DishRepo) List(ctx context.Context, q DishQuery) ([]model.Dish, error) {
	where := []string{}
	args := []any{}
	if q.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)")
		p := likePattern(q.Search)
		args = append(args, p, p, p)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Available != nil {
		where = append(where, "is_available = ?")
		args = append(args, *q.Available)
	}
	if q.Style != "" {
		where = append(where, "style = ?")
		args = append(args, q.Style)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(q.Limit, 50, 100), max(q.Offset, 0))
	out := []model.Dish{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+dishColumns+" FROM dishes WHERE "+cond+" ORDER BY category, name LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts d and returns the stored row.
func (r *DishRepo) Create(ctx context.Context, d model.Dish) (*model.Dish, error) {
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO dishes (name, description, category, price, image_url, is_available, style, created_at, updated_at)
		 VALUES (:name, :description, :category, :price, :image_url, :is_available, :style, :created_at, :updated_at)`, d)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id))
}

// Update applies p and returns the updated row, or sql.ErrNoRows.
func (r *DishRepo) Update(ctx context.Context, id uint64, p DishPatch) (*model.Dish, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.ImageURL != nil {
		add("image_url", nullIfEmpty(*p.ImageURL))
	}
	if p.IsAvailable != nil {
		add("is_available", *p.IsAvailable)
	}
	if p.Style != nil {
		add("style", nullIfEmpty(*p.Style))
	}
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE dishes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a dish and returns what was removed.
func (r *DishRepo) Delete(ctx context.Context, id uint64) (*model.Dish, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM dishes WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

// nullIfEmpty maps "" to SQL NULL for optional columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
