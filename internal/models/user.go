package models

import (
	"time"
)

// Roles
const (
	RoleAdmin       = "admin"
	RoleAgent       = "agent"
	RoleAgencyAdmin = "agency_admin"
	RoleClient      = "client"
)

type User struct {
	ID               string
	Email            string
	Name             string
	Role             string // admin, agent, agency_admin, client
	SubscriptionType string // tier name, resolved through TierTable
	AgencyID         *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanPublish reports whether the user's role may own listings.
func (u *User) CanPublish() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin, RoleAgent, RoleAgencyAdmin:
		return true
	}
	return false
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleAgencyAdmin, RoleClient:
		return true
	}
	return false
}
