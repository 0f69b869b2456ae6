// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"levelup/internal/domain/entity"
	"levelup/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when an account is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateReferralCode is returned when an insert collides on the referral
// code unique index. Two concurrent registrations can both pass the
// availability pre-check; the caller treats this as a transient generation
// failure, not a business conflict.
var ErrDuplicateReferralCode = errors.New("referral code already exists")

// UserRepository defines the standard operations for account persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByIDForUpdate retrieves an account and locks its row for the
	// duration of the surrounding transaction. Points movements on the same
	// account serialize through this lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByReferralCode retrieves the account owning the given referral code.
	FindByReferralCode(ctx context.Context, code string) (*entity.User, error)

	// Create persists a new account entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing account entity in the storage.
	Update(ctx context.Context, user *entity.User) error
}
