package repositories

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"artisanhub/internal/models"
)

// JSONArtisanRepository stores artisans in <dataDir>/artisans.json.
type JSONArtisanRepository struct {
	col *jsonCollection[models.Artisan]
}

func NewJSONArtisanRepository(dataDir string) (*JSONArtisanRepository, error) {
	col, err := newJSONCollection(filepath.Join(dataDir, "artisans.json"),
		func(a *models.Artisan) string { return a.ID })
	if err != nil {
		return nil, fmt.Errorf("failed to open artisan store: %w", err)
	}
	return &JSONArtisanRepository{col: col}, nil
}

func (r *JSONArtisanRepository) GetAll() ([]models.Artisan, error) {
	artisans, err := r.col.all()
	if err != nil {
		return nil, fmt.Errorf("failed to get all artisans: %w", err)
	}
	return artisans, nil
}

func (r *JSONArtisanRepository) GetByID(id string) (*models.Artisan, error) {
	a, err := r.col.get(id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("artisan with ID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artisan by ID %s: %w", id, err)
	}
	return a, nil
}

func (r *JSONArtisanRepository) GetByEmail(email string) (*models.Artisan, error) {
	a, err := r.col.find(func(a *models.Artisan) bool { return strings.EqualFold(a.Email, email) })
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("artisan with email %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artisan by email %s: %w", email, err)
	}
	return a, nil
}

func (r *JSONArtisanRepository) Create(artisan *models.Artisan) error {
	if err := r.col.insert(artisan); err != nil {
		return fmt.Errorf("failed to create artisan: %w", err)
	}
	return nil
}

func (r *JSONArtisanRepository) Update(artisan *models.Artisan) error {
	if err := r.col.replace(artisan); err != nil {
		return fmt.Errorf("failed to update artisan %s: %w", artisan.ID, err)
	}
	return nil
}

func (r *JSONArtisanRepository) Mutate(id string, fn func(*models.Artisan) error) (*models.Artisan, error) {
	return r.col.mutateOne(id, fn)
}
