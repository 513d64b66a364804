package repositories

import "artisanhub/internal/models"

// ArtisanRepository defines the interface for artisan data access.
type ArtisanRepository interface {
	GetAll() ([]models.Artisan, error)
	GetByID(id string) (*models.Artisan, error)
	GetByEmail(email string) (*models.Artisan, error)
	Create(artisan *models.Artisan) error
	Update(artisan *models.Artisan) error
	// Mutate applies fn to the stored artisan and persists the result atomically.
	Mutate(id string, fn func(*models.Artisan) error) (*models.Artisan, error)
}
