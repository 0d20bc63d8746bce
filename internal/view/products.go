package view

import (
	"sort"
	"strings"

	"optic-storefront/internal/domain"
)

// FilterProducts keeps products whose name or brand contains query,
// ignoring case. An empty query keeps everything.
func FilterProducts(list []domain.Product, query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Brand), q) {
			out = append(out, p)
		}
	}
	return out
}

// InventoryAlert flags an active product running low on stock
type InventoryAlert struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Inventory  int    `json:"inventory"`
	OutOfStock bool   `json:"outOfStock"`
}

// InventoryAlerts lists active products at or below threshold, emptiest first
func InventoryAlerts(products []domain.Product, threshold int) []InventoryAlert {
	alerts := []InventoryAlert{}
	for _, p := range products {
		if !p.IsActive || p.Inventory > threshold {
			continue
		}
		alerts = append(alerts, InventoryAlert{
			ProductID:  p.ID,
			Name:       p.Name,
			Inventory:  p.Inventory,
			OutOfStock: !p.InStock(),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Inventory < alerts[j].Inventory
	})
	return alerts
}
