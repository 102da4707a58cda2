package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Images      []string  `json:"images" db:"images"`
	Category    string    `json:"category" db:"category"`
	Inventory   int       `json:"inventory" db:"inventory"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FirstImage returns the leading image URL, or empty when the product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
