package auth

import (
	"context"
	"errors"
	"fmt"

	"cafedir/database"
	"cafedir/model"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("email or password does not exist")
	ErrEmailTaken         = errors.New("email already registered")
)

type Users interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type Authenticator struct {
	users  Users
	hasher *Hasher
	// decoy is compared against when the email is unknown so both failure
	// paths pay for one bcrypt comparison.
	decoy string
}

func NewAuthenticator(users Users, hasher *Hasher) (*Authenticator, error) {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("hash decoy password: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, decoy: decoy}, nil
}

// Register creates an account. A known email yields ErrEmailTaken.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	_, err := a.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	hashed, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Name: name, Email: email, Password: hashed}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			a.hasher.Verify(password, a.decoy)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
