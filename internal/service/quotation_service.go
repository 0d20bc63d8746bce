package service

import (
	"context"
	"net/url"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// CreateQuotationRequest represents the quotation request form payload
type CreateQuotationRequest struct {
	Subject     string                 `json:"subject" validate:"required,max=200"`
	Description string                 `json:"description,omitempty" validate:"max=2000"`
	Items       []domain.QuotationItem `json:"items" validate:"required,min=1,dive"`
}

// QuotationReplyRequest represents a staff reply
type QuotationReplyRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// QuotationService wraps the /quotations endpoints
type QuotationService interface {
	Create(ctx context.Context, req CreateQuotationRequest) (*domain.Quotation, error)
	List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Quotation], error)
	Get(ctx context.Context, id string) (*domain.Quotation, error)
	Reply(ctx context.Context, id string, req QuotationReplyRequest) (*domain.Quotation, error)
	UpdateStatus(ctx context.Context, id string, status domain.QuotationStatus) (*domain.Quotation, error)
}

type quotationService struct {
	client *apiclient.Client
}

// NewQuotationService creates a new instance of QuotationService
func NewQuotationService(client *apiclient.Client) QuotationService {
	return &quotationService{client: client}
}

func (s *quotationService) Create(ctx context.Context, req CreateQuotationRequest) (*domain.Quotation, error) {
	var q domain.Quotation
	if _, err := s.client.Post(ctx, "/quotations", req, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *quotationService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Quotation], error) {
	return listPage[domain.Quotation](ctx, s.client, "/quotations", paginationQuery(params))
}

func (s *quotationService) Get(ctx context.Context, id string) (*domain.Quotation, error) {
	var q domain.Quotation
	if _, err := s.client.Get(ctx, "/quotations/"+url.PathEscape(id), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *quotationService) Reply(ctx context.Context, id string, req QuotationReplyRequest) (*domain.Quotation, error) {
	var q domain.Quotation
	if _, err := s.client.Post(ctx, "/quotations/"+url.PathEscape(id)+"/replies", req, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *quotationService) UpdateStatus(ctx context.Context, id string, status domain.QuotationStatus) (*domain.Quotation, error) {
	var q domain.Quotation
	body := map[string]domain.QuotationStatus{"status": status}
	if _, err := s.client.Put(ctx, "/quotations/"+url.PathEscape(id)+"/status", body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
