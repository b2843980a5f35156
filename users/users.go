package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/keyflow/internal/utils"
)

// RoleType is the single role tag carried by a user
type RoleType string

const (
	RoleUser  RoleType = "user"  // Default role assigned on first login
	RoleAdmin RoleType = "admin" // Granted out of band, checked by RequireAdmin
)

// User is the local record for an identity established through the provider
type User struct {
	ID        uuid.UUID `json:"id"`                   // Internal identifier, the session subject
	GitHubID  int64     `json:"github_id"`            // Provider's numeric id, unique and immutable
	Login     string    `json:"login"`                // Provider login handle
	Name      *string   `json:"name,omitempty"`       // Optional display name
	AvatarURL *string   `json:"avatar_url,omitempty"` // Optional avatar reference
	Email     *string   `json:"email,omitempty"`      // Lower-cased on write, never regressed to empty
	Role      RoleType  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the provider's view of a user as returned by its user endpoint
type Profile struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Email     *string `json:"email"`
}

// PublicUser is what the API exposes about a user
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Name      *string   `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Email     *string   `json:"email"`
	Role      RoleType  `json:"role"`
}

// NormalizedEmail returns the profile email lower-cased, nil when absent or blank
func (p Profile) NormalizedEmail() *string {
	email := strings.ToLower(strings.TrimSpace(utils.Value(p.Email)))
	if email == "" {
		return nil
	}
	return utils.Ptr(email)
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Login:     u.Login,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// HasRole is an exact tag comparison; there is no role hierarchy
func (u *User) HasRole(role RoleType) bool {
	return u.Role == role
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
