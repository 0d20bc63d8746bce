// Package access maps roles to permissions and decides what a guarded view
// shows for the current session.
package access

import (
	"fmt"

	"optic-storefront/internal/domain"
)

// Permission is an action a role may be allowed to perform
type Permission int

const (
	ViewCatalog Permission = iota
	PlaceOrders
	ViewOwnOrders
	BookAppointments
	RequestQuotations
	ManageProducts
	ManageInventory
	ManageOrders
	ManageAppointments
	ManageQuotations
	ManageUsers
	ViewReports

	permissionCount
)

var permissionNames = [permissionCount]string{
	ViewCatalog:        "VIEW_CATALOG",
	PlaceOrders:        "PLACE_ORDERS",
	ViewOwnOrders:      "VIEW_OWN_ORDERS",
	BookAppointments:   "BOOK_APPOINTMENTS",
	RequestQuotations:  "REQUEST_QUOTATIONS",
	ManageProducts:     "MANAGE_PRODUCTS",
	ManageInventory:    "MANAGE_INVENTORY",
	ManageOrders:       "MANAGE_ORDERS",
	ManageAppointments: "MANAGE_APPOINTMENTS",
	ManageQuotations:   "MANAGE_QUOTATIONS",
	ManageUsers:        "MANAGE_USERS",
	ViewReports:        "VIEW_REPORTS",
}

func (p Permission) String() string {
	if p < 0 || p >= permissionCount {
		return fmt.Sprintf("Permission(%d)", int(p))
	}
	return permissionNames[p]
}

// AllPermissions lists every permission in declaration order
func AllPermissions() []Permission {
	out := make([]Permission, 0, permissionCount)
	for p := Permission(0); p < permissionCount; p++ {
		out = append(out, p)
	}
	return out
}

// IsManagement reports whether p is one of the MANAGE_* permissions
func (p Permission) IsManagement() bool {
	switch p {
	case ManageProducts, ManageInventory, ManageOrders, ManageAppointments, ManageQuotations, ManageUsers:
		return true
	}
	return false
}

func customerCan(p Permission) bool {
	switch p {
	case ViewCatalog, PlaceOrders, ViewOwnOrders, BookAppointments, RequestQuotations:
		return true
	}
	return false
}

func staffCan(p Permission) bool {
	switch p {
	case ManageInventory, ManageOrders, ManageAppointments, ManageQuotations, ViewReports:
		return true
	}
	return customerCan(p)
}

// Can reports whether role grants p. Unknown roles and permissions grant nothing.
func Can(role domain.Role, p Permission) bool {
	if p < 0 || p >= permissionCount {
		return false
	}
	switch role {
	case domain.RoleUser:
		return customerCan(p)
	case domain.RoleStaff:
		return staffCan(p)
	case domain.RoleAdmin:
		return true
	default:
		return false
	}
}

// Permissions returns every permission granted to role
func Permissions(role domain.Role) []Permission {
	var out []Permission
	for _, p := range AllPermissions() {
		if Can(role, p) {
			out = append(out, p)
		}
	}
	return out
}
