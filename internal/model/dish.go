package model

import "time"

// Dish styles accepted by the menu editor.
const (
	StyleNorthIndian = "North Indian"
	StyleSouthIndian = "South Indian"
)

// ValidDishStyle reports whether s is an accepted dish style.
func ValidDishStyle(s string) bool {
	return s == StyleNorthIndian || s == StyleSouthIndian
}

// Dish is a menu item.  Price is free text ("$14", "MP").
type Dish struct {
	ID          uint64    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Price       string    `db:"price" json:"price"`
	ImageURL    *string   `db:"image_url" json:"imageUrl"`
	IsAvailable bool      `db:"is_available" json:"isAvailable"`
	Style       *string   `db:"style" json:"style"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
