package handler

import (
	"time"

	"levelup/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// userView is the public projection of an account. The password hash never
// leaves the core.
type userView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	TaxID        string    `json:"tax_id,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	MemberType   string    `json:"member_type"`
	Level        string    `json:"level"`
	Points       int       `json:"points"`
	ReferralCode string    `json:"referral_code"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newUserView(user *entity.User) *userView {
	return &userView{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		TaxID:        user.TaxID,
		Phone:        user.Phone,
		Role:         user.Role.String(),
		MemberType:   string(user.MemberType),
		Level:        user.Level,
		Points:       user.Points,
		ReferralCode: user.ReferralCode,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}
}

// addressRequest mirrors entity.Address for request payloads.
type addressRequest struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Apartment  string `json:"apartment"`
	City       string `json:"city"`
	Commune    string `json:"commune"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

func (r addressRequest) toEntity() entity.Address {
	return entity.Address{
		Name:       r.Name,
		Street:     r.Street,
		Number:     r.Number,
		Apartment:  r.Apartment,
		City:       r.City,
		Commune:    r.Commune,
		Region:     r.Region,
		PostalCode: r.PostalCode,
	}
}

// callerID returns the authenticated account ID placed on the context by the
// auth middleware.
func callerID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get("userID").(uuid.UUID)
	return id, ok
}

// callerRole returns the authenticated role, or an empty string.
func callerRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
