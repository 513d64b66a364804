package repositories

import (
	"artisanhub/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// Mutate applies fn to the stored product and persists the result
	// atomically with respect to other mutations. fn's error aborts the write.
	Mutate(id string, fn func(*models.Product) error) (*models.Product, error)
	// MutateMany is Mutate over several products in one step; fn receives
	// them keyed by id.
	MutateMany(ids []string, fn func(map[string]*models.Product) error) error
}
