// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemberType classifies a customer for discount policy purposes.
type MemberType string

const (
	// MemberTypeNormal is the default customer classification.
	MemberTypeNormal MemberType = "normal"
	// MemberTypeDuoc marks customers registered with an institutional email,
	// which entitles them to the institutional tier discount.
	MemberTypeDuoc MemberType = "duoc"
)

// duocDomains are the institutional email domains recognized at registration.
var duocDomains = []string{"duocuc.cl", "duoc.cl", "profesor.duoc.cl"}

// MemberTypeForEmail derives the member type from the registration email domain.
func MemberTypeForEmail(email string) MemberType {
	lower := strings.ToLower(email)
	for _, domain := range duocDomains {
		if strings.HasSuffix(lower, "@"+domain) {
			return MemberTypeDuoc
		}
	}

	return MemberTypeNormal
}

// DefaultLevel is the loyalty tier assigned to every new account.
// Tier progression itself is owned by an external policy, not this core.
const DefaultLevel = "bronce"

// User is the core account entity: a customer (or administrator) of the store.
// The loyalty points balance is the single source of truth for the points
// economy; it must never be observably negative after a completed operation.
type User struct {
	ID           uuid.UUID  // The Global Unique Identifier for the account.
	Name         string     // The account holder's display name.
	Email        string     // Primary contact email, used as the login identifier.
	PasswordHash string     // Bcrypt hash of the password. Never exposed outside the core.
	TaxID        string     // National tax identifier (RUT).
	Phone        string     // Contact phone number.
	Role         Role       // Account role: regular user or administrator.
	MemberType   MemberType // Discount classification derived from the email domain.
	Level        string     // Loyalty tier label. Derived externally, stored as-is.
	Points       int        // Loyalty points balance.
	ReferralCode string     // Unique code this account shares with new signups. Immutable once assigned.
	ReferredBy   string     // Referral code supplied at signup, if any. Immutable.
	Active       bool       // Whether the account may operate.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSpendPoints reports whether the balance covers the given debit.
func (u *User) CanSpendPoints(points int) bool {
	return points <= u.Points
}

// IsReferrer reports whether this account is eligible to collect referral
// bonuses. Administrative accounts hand out codes for support purposes and
// must not accrue points from them.
func (u *User) IsReferrer() bool {
	return u.Role == RoleUser
}
