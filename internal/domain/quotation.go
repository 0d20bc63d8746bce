package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus is the negotiation lifecycle of a quotation
type QuotationStatus string

const (
	QuotationPending   QuotationStatus = "pending"
	QuotationApproved  QuotationStatus = "approved"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationConverted QuotationStatus = "converted"
	QuotationExpired   QuotationStatus = "expired"
)

// IsValid reports whether s is a known quotation status
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationPending, QuotationApproved, QuotationRejected,
		QuotationConverted, QuotationExpired:
		return true
	}
	return false
}

// Quotation is a price negotiation between a customer and staff
type Quotation struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Subject     string           `json:"subject"`
	Description string           `json:"description,omitempty"`
	Items       []QuotationItem  `json:"items"`
	Status      QuotationStatus  `json:"status"`
	QuotedTotal *decimal.Decimal `json:"quotedTotal,omitempty"`
	Replies     []QuotationReply `json:"replies"`
	ValidUntil  *time.Time       `json:"validUntil,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// QuotationItem is a product the customer wants priced
type QuotationItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Notes     string `json:"notes,omitempty"`
}

// QuotationReply is an append-only staff message on a quotation
type QuotationReply struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
