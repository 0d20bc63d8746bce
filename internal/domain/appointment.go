package domain

import (
	"time"
)

// AppointmentStatus is the scheduling lifecycle of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// IsValid reports whether s is a known appointment status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled,
		AppointmentCompleted, AppointmentNoShow:
		return true
	}
	return false
}

// IsClosed reports whether the appointment will not take place anymore
func (s AppointmentStatus) IsClosed() bool {
	return s == AppointmentCancelled || s == AppointmentCompleted || s == AppointmentNoShow
}

// Date and time layouts used by the backend for appointment slots
const (
	DateLayout     = "2006-01-02"
	TimeSlotLayout = "15:04"
)

// Appointment is a booked visit to the store
type Appointment struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      string            `json:"type"`
	Date      string            `json:"date"`
	TimeSlot  string            `json:"timeSlot"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// StartsAt combines the date and time slot in the given location.
// The date alone is used when the slot cannot be parsed.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if a.TimeSlot != "" {
		t, err := time.ParseInLocation(DateLayout+" "+TimeSlotLayout, a.Date+" "+a.TimeSlot, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.ParseInLocation(DateLayout, a.Date, loc)
}

// CanCancel reports whether the customer may still cancel
func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

// TimeSlot is a bookable slot returned by the availability endpoint
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
