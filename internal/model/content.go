package model

import "time"

// Content is a free-text block shown on one of the public pages.
type Content struct {
	ID          uint64    `db:"id" json:"id"`
	Section     string    `db:"section" json:"section"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"imageUrl"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Pages that own structured page-content fields.
var Pages = []string{"home", "about", "experience", "menu", "catering", "contact"}

// Content types a page-content field can hold.
var ContentTypes = []string{"text", "image", "list_item"}

// PageContent is a single structured field of a page section, ordered by
// DisplayOrder within the section.
type PageContent struct {
	ID           uint64    `db:"id" json:"id"`
	Page         string    `db:"page" json:"page"`
	Section      string    `db:"section" json:"section"`
	ContentType  string    `db:"content_type" json:"contentType"`
	FieldName    string    `db:"field_name" json:"fieldName"`
	FieldValue   *string   `db:"field_value" json:"fieldValue"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
