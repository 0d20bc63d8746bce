package service

import (
	"context"
	"net/url"
	"strconv"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// listPage fetches a paginated list and folds meta.pagination into the page.
// A response without pagination meta is treated as a single page.
func listPage[T any](ctx context.Context, client *apiclient.Client, path string, query url.Values) (*domain.Page[T], error) {
	var items []T
	resp, err := client.Get(ctx, path, query, &items)
	if err != nil {
		return nil, err
	}

	page := &domain.Page[T]{Items: items}
	if page.Items == nil {
		page.Items = []T{}
	}
	if resp.Meta.Pagination != nil {
		page.Pagination = *resp.Meta.Pagination
	} else {
		page.Pagination = domain.Pagination{
			Page:  1,
			Limit: len(items),
			Total: len(items),
			Pages: 1,
		}
	}
	return page, nil
}

func paginationQuery(p domain.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
