package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	Price          decimal.Decimal   `json:"price"`
	Inventory      int               `json:"inventory"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Images         []string          `json:"images,omitempty"`
	IsActive       bool              `json:"isActive"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Inventory > 0
}

// InventoryUpdate is a single staff inventory change
type InventoryUpdate struct {
	ProductID string `json:"productId" validate:"required"`
	Inventory int    `json:"inventory" validate:"gte=0"`
}
