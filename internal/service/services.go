package service

import "optic-storefront/internal/apiclient"

// Services bundles every resource wrapper bound to one API client
type Services struct {
	Auth         AuthService
	Cart         CartService
	Orders       OrderService
	Products     ProductService
	Appointments AppointmentService
	Users        UserService
	Quotations   QuotationService
}

// New builds the full service set over client
func New(client *apiclient.Client, bulkConcurrency int) *Services {
	return &Services{
		Auth:         NewAuthService(client),
		Cart:         NewCartService(client),
		Orders:       NewOrderService(client),
		Products:     NewProductService(client, bulkConcurrency),
		Appointments: NewAppointmentService(client),
		Users:        NewUserService(client),
		Quotations:   NewQuotationService(client),
	}
}
