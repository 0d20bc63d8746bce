package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line in the shopping cart
type CartItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Product     *Product        `json:"product,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	LensOptions *LensOptions    `json:"lensOptions,omitempty"`
}

// LensOptions describes lens customisation attached to a frame
type LensOptions struct {
	LensType     string        `json:"lensType"`
	Coatings     []string      `json:"coatings,omitempty"`
	Prescription *Prescription `json:"prescription,omitempty"`
}

// Cart is the client-visible shopping state.
// Subtotal == Σ item.TotalPrice and TotalItems == Σ item.Quantity.
type Cart struct {
	ID         string          `json:"id,omitempty"`
	Items      []CartItem      `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalItems int             `json:"totalItems"`
	UpdatedAt  time.Time       `json:"updatedAt,omitempty"`
}

// Recalculate re-derives every line total and the cart totals from the items
func (c *Cart) Recalculate() {
	subtotal := decimal.Zero
	count := 0
	for i := range c.Items {
		item := &c.Items[i]
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.TotalPrice)
		count += item.Quantity
	}
	c.Subtotal = subtotal
	c.TotalItems = count
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the index of the item with the given id, or -1
func (c *Cart) FindItem(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the item slice so optimistic edits can be rolled back
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
