package service

import (
	"context"
	"net/url"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID   string              `json:"productId" validate:"required"`
	Quantity    int                 `json:"quantity" validate:"required,gte=1,lte=99"`
	LensOptions *domain.LensOptions `json:"lensOptions,omitempty"`
}

// UpdateCartItemRequest represents the quantity change payload
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
}

// CartService wraps the /cart endpoints
type CartService interface {
	Get(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, req AddCartItemRequest) (*domain.CartItem, error)
	UpdateItem(ctx context.Context, itemID string, req UpdateCartItemRequest) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
}

type cartService struct {
	client *apiclient.Client
}

// NewCartService creates a new instance of CartService
func NewCartService(client *apiclient.Client) CartService {
	return &cartService{client: client}
}

func (s *cartService) Get(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if _, err := s.client.Get(ctx, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func (s *cartService) AddItem(ctx context.Context, req AddCartItemRequest) (*domain.CartItem, error) {
	var item domain.CartItem
	if _, err := s.client.Post(ctx, "/cart/items", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *cartService) UpdateItem(ctx context.Context, itemID string, req UpdateCartItemRequest) (*domain.CartItem, error) {
	var item domain.CartItem
	if _, err := s.client.Put(ctx, "/cart/items/"+url.PathEscape(itemID), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID string) error {
	_, err := s.client.Delete(ctx, "/cart/items/"+url.PathEscape(itemID), nil)
	return err
}

func (s *cartService) Clear(ctx context.Context) error {
	_, err := s.client.Delete(ctx, "/cart", nil)
	return err
}
