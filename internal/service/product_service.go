package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ProductFilter narrows the catalog list
type ProductFilter struct {
	domain.ListParams
	Category string
	Brand    string
	Search   string
	Sort     string
}

// ProductInput represents the staff product form payload
type ProductInput struct {
	Name           string            `json:"name" validate:"required,max=200"`
	Description    string            `json:"description" validate:"max=5000"`
	Brand          string            `json:"brand" validate:"required"`
	Category       string            `json:"category" validate:"required,oneof=eyeglasses sunglasses contact_lenses accessories"`
	Price          decimal.Decimal   `json:"price" validate:"gt=0"`
	Inventory      int               `json:"inventory" validate:"gte=0"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Images         []string          `json:"images,omitempty" validate:"dive,url"`
	IsActive       bool              `json:"isActive"`
}

// BulkInventoryError reports a partially applied bulk inventory update.
// Updates in Applied were confirmed by the backend before the failure and
// are not rolled back.
type BulkInventoryError struct {
	ProductID string
	Applied   []string
	Err       error
}

func (e *BulkInventoryError) Error() string {
	return fmt.Sprintf("inventory update for product %s failed: %v", e.ProductID, e.Err)
}

func (e *BulkInventoryError) Unwrap() error {
	return e.Err
}

// ProductService wraps the /products endpoints
type ProductService interface {
	List(ctx context.Context, filter ProductFilter) (*domain.Page[domain.Product], error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	UpdateInventory(ctx context.Context, id string, inventory int) (*domain.Product, error)
	BulkUpdateInventory(ctx context.Context, updates []domain.InventoryUpdate) ([]domain.Product, error)
}

type productService struct {
	client          *apiclient.Client
	bulkConcurrency int
}

// NewProductService creates a new instance of ProductService.
// bulkConcurrency bounds the number of in-flight inventory calls; 0 means unbounded.
func NewProductService(client *apiclient.Client, bulkConcurrency int) ProductService {
	return &productService{client: client, bulkConcurrency: bulkConcurrency}
}

func (s *productService) List(ctx context.Context, filter ProductFilter) (*domain.Page[domain.Product], error) {
	q := paginationQuery(filter.ListParams)
	setIfNotEmpty(q, "category", filter.Category)
	setIfNotEmpty(q, "brand", filter.Brand)
	setIfNotEmpty(q, "search", filter.Search)
	setIfNotEmpty(q, "sort", filter.Sort)
	return listPage[domain.Product](ctx, s.client, "/products", q)
}

func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if _, err := s.client.Get(ctx, "/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	var product domain.Product
	if _, err := s.client.Post(ctx, "/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	var product domain.Product
	if _, err := s.client.Put(ctx, "/products/"+url.PathEscape(id), input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, "/products/"+url.PathEscape(id), nil)
	return err
}

func (s *productService) UpdateInventory(ctx context.Context, id string, inventory int) (*domain.Product, error) {
	var product domain.Product
	body := map[string]int{"inventory": inventory}
	if _, err := s.client.Put(ctx, "/products/"+url.PathEscape(id)+"/inventory", body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// BulkUpdateInventory sends one inventory call per update concurrently.
// The whole operation fails if any call fails; there is no atomicity
// across the batch.
func (s *productService) BulkUpdateInventory(ctx context.Context, updates []domain.InventoryUpdate) ([]domain.Product, error) {
	g, gctx := errgroup.WithContext(ctx)
	if s.bulkConcurrency > 0 {
		g.SetLimit(s.bulkConcurrency)
	}

	var (
		mu      sync.Mutex
		applied []string
		failed  string
		cause   error
	)
	results := make([]domain.Product, len(updates))

	for i, update := range updates {
		g.Go(func() error {
			product, err := s.UpdateInventory(gctx, update.ProductID, update.Inventory)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if cause == nil {
					failed, cause = update.ProductID, err
				}
				return err
			}
			applied = append(applied, update.ProductID)
			results[i] = *product
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &BulkInventoryError{ProductID: failed, Applied: applied, Err: cause}
	}
	return results, nil
}
