package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/pilot"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time interface verification.
var _ pilot.UserService = (*UserService)(nil)

// DefaultBcryptCost is the bcrypt cost used for new passwords.
const DefaultBcryptCost = 12

// UserService implements pilot.UserService using SQLite and bcrypt.
type UserService struct {
	db *DB

	// Cost is the bcrypt cost for new password hashes.
	Cost int
}

// NewUserService creates a new UserService.
func NewUserService(db *DB) *UserService {
	return &UserService{db: db, Cost: DefaultBcryptCost}
}

// normalizeEmail lower-cases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user with the given password.
func (s *UserService) CreateUser(ctx context.Context, user *pilot.User, password string) error {
	user.Email = normalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}
	if password == "" {
		return pilot.Errorf(pilot.EINVALID, "user password required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", user.Email).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return pilot.Errorf(pilot.EINVALID, "user %q already exists", user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return err
	}

	user.ID = uuid.New().String()
	user.CreatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, string(hash), user.Name, formatTime(user.CreatedAt))

	return err
}

// Authenticate returns the user matching email and password and records
// the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*pilot.User, error) {
	var user pilot.User
	var hash, createdAt, lastLogin string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at, last_login
		FROM users
		WHERE email = ?
	`, normalizeEmail(email)).Scan(&user.ID, &user.Email, &hash, &user.Name, &createdAt, &lastLogin)

	if err == sql.ErrNoRows {
		return nil, pilot.Errorf(pilot.EUNAUTHORIZED, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, pilot.Errorf(pilot.EUNAUTHORIZED, "invalid credentials")
	}

	if user.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}

	user.LastLogin = now()
	if _, err := s.db.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?",
		formatTime(user.LastLogin), user.ID); err != nil {
		return nil, err
	}

	return &user, nil
}
