package view

import (
	"sort"
	"time"

	"optic-storefront/internal/domain"
)

// AppointmentCard is one appointment as shown to the customer
type AppointmentCard struct {
	domain.Appointment
	StartsAt  time.Time `json:"startsAt"`
	CanCancel bool      `json:"canCancel"`
}

// NewAppointmentCard builds the card for a, resolving its start in loc
func NewAppointmentCard(a domain.Appointment, loc *time.Location) AppointmentCard {
	start, _ := a.StartsAt(loc)
	return AppointmentCard{
		Appointment: a,
		StartsAt:    start,
		CanCancel:   a.CanCancel(),
	}
}

// AppointmentsPage is the "my appointments" page model
type AppointmentsPage struct {
	Upcoming []AppointmentCard `json:"upcoming"`
	Past     []AppointmentCard `json:"past"`
	Controls Controls          `json:"controls"`
}

// SplitAppointments separates upcoming from past appointments. Upcoming ones
// start at or after now and are still open; they are sorted soonest first.
// Everything else is past, most recent first.
func SplitAppointments(list []domain.Appointment, now time.Time) (upcoming, past []AppointmentCard) {
	loc := now.Location()
	upcoming = []AppointmentCard{}
	past = []AppointmentCard{}

	for _, a := range list {
		card := NewAppointmentCard(a, loc)
		if !a.Status.IsClosed() && !card.StartsAt.Before(now) {
			upcoming = append(upcoming, card)
		} else {
			past = append(past, card)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].StartsAt.After(past[j].StartsAt)
	})
	return upcoming, past
}

// BuildAppointmentsPage assembles the page model for one page of appointments
func BuildAppointmentsPage(page *domain.Page[domain.Appointment], now time.Time) AppointmentsPage {
	upcoming, past := SplitAppointments(page.Items, now)
	return AppointmentsPage{
		Upcoming: upcoming,
		Past:     past,
		Controls: PageControls(page.Pagination),
	}
}
