package repositories

import (
	"errors"
	"fmt"
	"path/filepath"

	"artisanhub/internal/models"
)

// JSONProductRepository stores products in <dataDir>/products.json.
type JSONProductRepository struct {
	col *jsonCollection[models.Product]
}

// NewJSONProductRepository opens (or initialises) the products file.
func NewJSONProductRepository(dataDir string) (*JSONProductRepository, error) {
	col, err := newJSONCollection(filepath.Join(dataDir, "products.json"),
		func(p *models.Product) string { return p.ID })
	if err != nil {
		return nil, fmt.Errorf("failed to open product store: %w", err)
	}
	return &JSONProductRepository{col: col}, nil
}

func (r *JSONProductRepository) GetAll() ([]models.Product, error) {
	products, err := r.col.all()
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

func (r *JSONProductRepository) GetByID(id string) (*models.Product, error) {
	p, err := r.col.get(id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return p, nil
}

func (r *JSONProductRepository) Create(product *models.Product) error {
	if err := r.col.insert(product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *JSONProductRepository) Update(product *models.Product) error {
	if err := r.col.replace(product); err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return nil
}

func (r *JSONProductRepository) Delete(id string) error {
	if err := r.col.remove(id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (r *JSONProductRepository) Mutate(id string, fn func(*models.Product) error) (*models.Product, error) {
	return r.col.mutateOne(id, fn)
}

func (r *JSONProductRepository) MutateMany(ids []string, fn func(map[string]*models.Product) error) error {
	return r.col.mutate(ids, fn)
}
