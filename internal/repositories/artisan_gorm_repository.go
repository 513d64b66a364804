package repositories

import (
	"errors"
	"fmt"

	"artisanhub/internal/models"

	"gorm.io/gorm"
)

// GORMArtisanRepository is a GORM implementation of ArtisanRepository.
type GORMArtisanRepository struct {
	db *gorm.DB
}

func NewGORMArtisanRepository(db *gorm.DB) *GORMArtisanRepository {
	return &GORMArtisanRepository{db: db}
}

func (r *GORMArtisanRepository) GetAll() ([]models.Artisan, error) {
	var artisans []models.Artisan
	if err := r.db.Order("created_at").Find(&artisans).Error; err != nil {
		return nil, fmt.Errorf("failed to get all artisans: %w", err)
	}
	return artisans, nil
}

func (r *GORMArtisanRepository) first(field, value string) (*models.Artisan, error) {
	var artisan models.Artisan
	if err := r.db.First(&artisan, field+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("artisan with %s %s: %w", field, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get artisan by %s %s: %w", field, value, err)
	}
	return &artisan, nil
}

func (r *GORMArtisanRepository) GetByID(id string) (*models.Artisan, error) {
	return r.first("id", id)
}

func (r *GORMArtisanRepository) GetByEmail(email string) (*models.Artisan, error) {
	return r.first("email", email)
}

func (r *GORMArtisanRepository) Create(artisan *models.Artisan) error {
	if err := r.db.Create(artisan).Error; err != nil {
		return fmt.Errorf("failed to create artisan: %w", err)
	}
	return nil
}

func (r *GORMArtisanRepository) Update(artisan *models.Artisan) error {
	res := r.db.Model(&models.Artisan{}).Where("id = ?", artisan.ID).Select("*").Updates(artisan)
	if res.Error != nil {
		return fmt.Errorf("failed to update artisan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("artisan with ID %s not found for update: %w", artisan.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMArtisanRepository) Mutate(id string, fn func(*models.Artisan) error) (*models.Artisan, error) {
	return mutateRow(r.db, "artisan", id, func(a *models.Artisan) string { return a.ID }, fn)
}
