package pilot

import (
	"context"
	"time"
)

// User represents an account allowed to use the pilot.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin,omitzero"`
}

// Validate returns an error if the user contains invalid fields.
func (u *User) Validate() error {
	if u.Email == "" {
		return Errorf(EINVALID, "user email required")
	}
	if u.Name == "" {
		return Errorf(EINVALID, "user name required")
	}
	return nil
}

// UserService represents a service for managing users.
type UserService interface {
	// CreateUser creates a new user with the given password.
	// Returns EINVALID if the email is already registered.
	CreateUser(ctx context.Context, user *User, password string) error

	// Authenticate returns the user matching email and password.
	// Returns EUNAUTHORIZED if the credentials do not match.
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
