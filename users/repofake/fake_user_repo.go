package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps users in memory. Returned users are copies.
type FakeUserRepo struct {
	users     map[uuid.UUID]*users.User
	githubIds map[int64]uuid.UUID // provider id to user id
	lock      sync.RWMutex
	now       func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:     make(map[uuid.UUID]*users.User),
		githubIds: make(map[int64]uuid.UUID),
		now:       time.Now,
	}
}

func (ur *FakeUserRepo) UpsertByExternalID(ctx context.Context, profile users.Profile) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	now := ur.now().UTC()
	email := profile.NormalizedEmail()

	if id, ok := ur.githubIds[profile.ID]; ok {
		user := ur.users[id]
		user.Login = profile.Login
		user.Name = profile.Name
		user.AvatarURL = profile.AvatarURL
		if email != nil {
			user.Email = email
		}
		user.UpdatedAt = now
		return copyUser(user), nil
	}

	user := &users.User{
		ID:        uuid.New(),
		GitHubID:  profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
		Email:     email,
		Role:      users.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ur.users[user.ID] = user
	ur.githubIds[user.GitHubID] = user.ID
	return copyUser(user), nil
}

func (ur *FakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyUser(user), nil
}

// SetRole changes a stored user's role
func (ur *FakeUserRepo) SetRole(id uuid.UUID, role users.RoleType) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = ur.now().UTC()
	return nil
}

func copyUser(u *users.User) *users.User {
	c := *u
	return &c
}
