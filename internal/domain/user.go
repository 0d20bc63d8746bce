package domain

import "time"

// User is the cached copy of the signed-in account
type User struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Phone     string      `json:"phone,omitempty"`
	Role      Role        `json:"role"`
	Profile   UserProfile `json:"profile"`
	CreatedAt time.Time   `json:"createdAt"`
}

// UserProfile holds the optional customer details
type UserProfile struct {
	DateOfBirth  string        `json:"dateOfBirth,omitempty"`
	Address      *Address      `json:"address,omitempty"`
	Prescription *Prescription `json:"prescription,omitempty"`
}

// Address is a postal address used for profiles and shipping
type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Prescription is an eyeglass prescription for both eyes
type Prescription struct {
	RightEye  EyePrescription `json:"rightEye"`
	LeftEye   EyePrescription `json:"leftEye"`
	PD        float64         `json:"pd,omitempty"`
	IssuedAt  string          `json:"issuedAt,omitempty"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
}

// EyePrescription holds the refraction values for a single eye
type EyePrescription struct {
	Sphere   float64 `json:"sphere"`
	Cylinder float64 `json:"cylinder"`
	Axis     int     `json:"axis" validate:"gte=0,lte=180"`
	Add      float64 `json:"add,omitempty"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
