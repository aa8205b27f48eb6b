// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/researchdt/internal/server/models"
)

// Repository persists users and their role-group membership.
type Repository interface {
	// Create inserts a user with a caller-chosen ID. A duplicate email
	// (case-insensitive) yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error

	// GetByID and GetByEmail return common.ErrorNotFound when absent.
	// The returned user carries its role set.
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// EmailTaken reports whether another user (not excludeID) owns email,
	// compared case-insensitively.
	EmailTaken(ctx context.Context, email string, excludeID string) (bool, error)

	// UpdateEmail changes only the email column.
	UpdateEmail(ctx context.Context, id string, email string) error
	SetPassword(ctx context.Context, id string, hash string) error

	AddRole(ctx context.Context, id string, role models.Role) error
	RemoveRole(ctx context.Context, id string, role models.Role) error
}
