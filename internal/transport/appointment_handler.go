package transport

import (
	"net/http"
	"time"

	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SlotsQuery is the availability lookup
type SlotsQuery struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Type string `json:"type" validate:"omitempty,oneof=eye_exam contact_lens_fitting frame_selection follow_up repair"`
}

// AppointmentHandler handles the customer's appointments
type AppointmentHandler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{logger: logger, now: time.Now}
}

// RegisterRoutes registers all appointment routes
func (h *AppointmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/appointments", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.logger))
		r.Get("/", h.ListAppointments)
		r.Post("/", h.CreateAppointment)
		r.Get("/slots", h.AvailableSlots)
		r.Get("/{id}", h.GetAppointment)
		r.Post("/{id}/cancel", h.CancelAppointment)
	})
}

// ListAppointments returns the appointments page split into upcoming and past
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	filter := service.AppointmentFilter{
		ListParams: listParams(r),
		Status:     domain.AppointmentStatus(r.URL.Query().Get("status")),
	}
	page, err := s.Services.Appointments.List(r.Context(), filter)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.BuildAppointmentsPage(page, h.now()), "")
}

// CreateAppointment books a visit
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.CreateAppointmentRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	appointment, err := s.Services.Appointments.Create(r.Context(), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("date", appointment.Date),
		zap.String("time_slot", appointment.TimeSlot),
	)
	middleware.RespondSuccess(w, http.StatusCreated, view.NewAppointmentCard(*appointment, h.now().Location()), "Appointment booked")
}

// GetAppointment returns a single appointment
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	appointment, err := s.Services.Appointments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.NewAppointmentCard(*appointment, h.now().Location()), "")
}

// CancelAppointment cancels a pending or confirmed appointment
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	appointment, err := s.Services.Appointments.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}
	if !appointment.CanCancel() {
		middleware.RespondWithError(w, http.StatusConflict, "appointment can no longer be cancelled")
		return
	}

	cancelled, err := s.Services.Appointments.Cancel(r.Context(), id)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.NewAppointmentCard(*cancelled, h.now().Location()), "Appointment cancelled")
}

// AvailableSlots lists bookable slots for a day
func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	query := SlotsQuery{
		Date: r.URL.Query().Get("date"),
		Type: r.URL.Query().Get("type"),
	}
	if err := middleware.ValidateRequest(&query); err != nil {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return
	}

	slots, err := s.Services.Appointments.AvailableSlots(r.Context(), query.Date, query.Type)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, slots, "")
}
