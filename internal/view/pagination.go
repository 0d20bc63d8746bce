// Package view holds the page logic shared by the storefront endpoints:
// pagination controls, appointment grouping and list filtering.
package view

import "optic-storefront/internal/domain"

// Controls describes the pagination bar under a list
type Controls struct {
	Pages        []int `json:"pages"`
	Current      int   `json:"current"`
	PrevDisabled bool  `json:"prevDisabled"`
	NextDisabled bool  `json:"nextDisabled"`
}

// MaxPageControls bounds the entries rendered for a single list
const MaxPageControls = 1000

// PageControls renders one entry per page. Prev is disabled on the first
// page and Next on the last. The page count comes from the backend, so it is
// clamped to what Total and Limit allow and to MaxPageControls.
func PageControls(p domain.Pagination) Controls {
	total := pageCount(p)
	if total <= 0 {
		return Controls{Pages: []int{}, Current: p.Page, PrevDisabled: true, NextDisabled: true}
	}

	current := p.Page
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}

	return Controls{
		Pages:        pages,
		Current:      current,
		PrevDisabled: current == 1,
		NextDisabled: current == total,
	}
}

func pageCount(p domain.Pagination) int {
	pages := p.Pages
	if p.Total > 0 && p.Limit > 0 {
		pages = min(pages, (p.Total+p.Limit-1)/p.Limit)
	}
	return min(pages, MaxPageControls)
}
