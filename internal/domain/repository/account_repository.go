// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for account persistence.
var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount is returned when the email is already taken.
	ErrDuplicateAccount = errors.New("account already exists")
)

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	// CreateAccount persists a new account. Email is unique across roles.
	CreateAccount(ctx context.Context, account *entity.Account) error

	// FindAccountByID retrieves an account by its unique ID.
	FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindAccountByEmail retrieves an account by email, case-insensitively.
	FindAccountByEmail(ctx context.Context, email string) (*entity.Account, error)

	// UpdateContact replaces the location and phone of an account.
	UpdateContact(ctx context.Context, id uuid.UUID, location *entity.GeoLocation, phone string) error
}
