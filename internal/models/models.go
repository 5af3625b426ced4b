package models

import (
	"errors"
	"time"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleDonor       Role = "donor"
	RoleBeneficiary Role = "beneficiary"
	RoleBusiness    Role = "business"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleBeneficiary, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

var (
	ErrInvalidUser   = errors.New("invalid user record")
	ErrInvalidRole   = errors.New("invalid role")
	ErrBusinessField = errors.New("business fields set on a non-business user")
)

// UserStats is informational only, it is never recomputed from the ledger.
type UserStats struct {
	Donations       int     `json:"donations"`
	TotalDonated    float64 `json:"total_donated"`
	RequestsCreated int     `json:"requests_created"`
}

// User represents the identity held by the current session.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	City     string    `json:"city,omitempty"`
	Role     Role      `json:"role"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	Stats    UserStats `json:"stats"`

	// Only present when Role is RoleBusiness.
	BusinessName string `json:"business_name,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	Expertise    string `json:"expertise,omitempty"`
	Responsible  string `json:"responsible,omitempty"`
}

// Validate checks the rules a stored user record must follow.
func (u User) Validate() error {
	if u.ID == "" || u.Email == "" {
		return ErrInvalidUser
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.Role != RoleBusiness && u.hasBusinessFields() {
		return ErrBusinessField
	}
	return nil
}

func (u User) hasBusinessFields() bool {
	return u.BusinessName != "" || u.TaxID != "" || u.Expertise != "" || u.Responsible != ""
}

// BusinessData carries the business-only profile fields.
type BusinessData struct {
	BusinessName string `json:"business_name"`
	TaxID        string `json:"tax_id"`
	Expertise    string `json:"expertise"`
	Responsible  string `json:"responsible"`
}

// ApplyTo merges the non-empty fields into u.
func (b BusinessData) ApplyTo(u *User) {
	if b.BusinessName != "" {
		u.BusinessName = b.BusinessName
	}
	if b.TaxID != "" {
		u.TaxID = b.TaxID
	}
	if b.Expertise != "" {
		u.Expertise = b.Expertise
	}
	if b.Responsible != "" {
		u.Responsible = b.Responsible
	}
}

// ClearBusiness drops every business-only field from u.
func ClearBusiness(u *User) {
	u.BusinessName = ""
	u.TaxID = ""
	u.Expertise = ""
	u.Responsible = ""
}
