package service

import (
	"context"
	"net/url"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// CreateOrderRequest represents the checkout form payload
type CreateOrderRequest struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required,oneof=card cash_on_delivery bank_transfer"`
	Notes           string         `json:"notes,omitempty" validate:"max=500"`
}

// OrderFilter narrows the order list
type OrderFilter struct {
	domain.ListParams
	Status domain.OrderStatus
}

// OrderService wraps the /orders endpoints
type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) (*domain.Page[domain.Order], error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	client *apiclient.Client
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(client *apiclient.Client) OrderService {
	return &orderService{client: client}
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if _, err := s.client.Post(ctx, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) List(ctx context.Context, filter OrderFilter) (*domain.Page[domain.Order], error) {
	q := paginationQuery(filter.ListParams)
	setIfNotEmpty(q, "status", string(filter.Status))
	return listPage[domain.Order](ctx, s.client, "/orders", q)
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if _, err := s.client.Get(ctx, "/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if _, err := s.client.Put(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	body := map[string]domain.OrderStatus{"status": status}
	if _, err := s.client.Put(ctx, "/orders/"+url.PathEscape(id)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
