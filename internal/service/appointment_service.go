package service

import (
	"context"
	"net/url"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// CreateAppointmentRequest represents the booking form payload
type CreateAppointmentRequest struct {
	Type     string `json:"type" validate:"required,oneof=eye_exam contact_lens_fitting frame_selection follow_up repair"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"timeSlot" validate:"required,datetime=15:04"`
	Notes    string `json:"notes,omitempty" validate:"max=500"`
}

// AppointmentFilter narrows the appointment list
type AppointmentFilter struct {
	domain.ListParams
	Status domain.AppointmentStatus
}

// AppointmentService wraps the /appointments endpoints
type AppointmentService interface {
	Create(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) (*domain.Page[domain.Appointment], error)
	Get(ctx context.Context, id string) (*domain.Appointment, error)
	Cancel(ctx context.Context, id string) (*domain.Appointment, error)
	AvailableSlots(ctx context.Context, date, appointmentType string) ([]domain.TimeSlot, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*domain.Appointment, error)
}

type appointmentService struct {
	client *apiclient.Client
}

// NewAppointmentService creates a new instance of AppointmentService
func NewAppointmentService(client *apiclient.Client) AppointmentService {
	return &appointmentService{client: client}
}

func (s *appointmentService) Create(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error) {
	var appt domain.Appointment
	if _, err := s.client.Post(ctx, "/appointments", req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *appointmentService) List(ctx context.Context, filter AppointmentFilter) (*domain.Page[domain.Appointment], error) {
	q := paginationQuery(filter.ListParams)
	setIfNotEmpty(q, "status", string(filter.Status))
	return listPage[domain.Appointment](ctx, s.client, "/appointments", q)
}

func (s *appointmentService) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	var appt domain.Appointment
	if _, err := s.client.Get(ctx, "/appointments/"+url.PathEscape(id), nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id string) (*domain.Appointment, error) {
	var appt domain.Appointment
	if _, err := s.client.Put(ctx, "/appointments/"+url.PathEscape(id)+"/cancel", nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *appointmentService) AvailableSlots(ctx context.Context, date, appointmentType string) ([]domain.TimeSlot, error) {
	q := url.Values{}
	q.Set("date", date)
	setIfNotEmpty(q, "type", appointmentType)

	var slots []domain.TimeSlot
	if _, err := s.client.Get(ctx, "/appointments/available-slots", q, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*domain.Appointment, error) {
	var appt domain.Appointment
	body := map[string]domain.AppointmentStatus{"status": status}
	if _, err := s.client.Put(ctx, "/appointments/"+url.PathEscape(id)+"/status", body, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}
