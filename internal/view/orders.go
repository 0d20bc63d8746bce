package view

import "optic-storefront/internal/domain"

// OrderRow is one line in the order history table
type OrderRow struct {
	domain.Order
	ItemCount int  `json:"itemCount"`
	CanCancel bool `json:"canCancel"`
}

// OrdersPage is the order history page model
type OrdersPage struct {
	Rows     []OrderRow `json:"rows"`
	Controls Controls   `json:"controls"`
}

// NewOrderRow builds the row for o
func NewOrderRow(o domain.Order) OrderRow {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderRow{Order: o, ItemCount: count, CanCancel: o.CanCancel()}
}

// BuildOrdersPage assembles the page model for one page of orders
func BuildOrdersPage(page *domain.Page[domain.Order]) OrdersPage {
	rows := make([]OrderRow, 0, len(page.Items))
	for _, o := range page.Items {
		rows = append(rows, NewOrderRow(o))
	}
	return OrdersPage{Rows: rows, Controls: PageControls(page.Pagination)}
}
