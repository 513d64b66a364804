package repositories

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"artisanhub/internal/models"

	"github.com/google/uuid"
)

// JSONUserRepository stores operator accounts in <dataDir>/users.json.
type JSONUserRepository struct {
	col *jsonCollection[models.User]
}

func NewJSONUserRepository(dataDir string) (*JSONUserRepository, error) {
	col, err := newJSONCollection(filepath.Join(dataDir, "users.json"),
		func(u *models.User) string { return u.ID })
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}
	return &JSONUserRepository{col: col}, nil
}

func (r *JSONUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := r.col.insert(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *JSONUserRepository) lookup(field, value string, match func(*models.User) bool) (*models.User, error) {
	u, err := r.col.find(match)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user with %s %s: %w", field, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s %s: %w", field, value, err)
	}
	return u, nil
}

func (r *JSONUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.lookup("username", username, func(u *models.User) bool { return u.Username == username })
}

func (r *JSONUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.lookup("email", email, func(u *models.User) bool { return u.Email == email })
}

func (r *JSONUserRepository) GetByID(id string) (*models.User, error) {
	return r.lookup("ID", id, func(u *models.User) bool { return u.ID == id })
}
