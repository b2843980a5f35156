package users

import (
	"context"

	"github.com/google/uuid"
)

// UserRepo is the user directory. Implementations return errors.ErrNotFound from GetByID
// when no record exists.
type UserRepo interface {
	// UpsertByExternalID creates or refreshes the user keyed by the profile's provider id.
	// A previously stored email is kept when the profile carries none.
	UpsertByExternalID(ctx context.Context, profile Profile) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
