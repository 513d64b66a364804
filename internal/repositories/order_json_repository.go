package repositories

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"artisanhub/internal/models"

	"github.com/google/uuid"
)

// JSONOrderRepository stores orders in <dataDir>/orders.json.
type JSONOrderRepository struct {
	col *jsonCollection[models.Order]
}

func NewJSONOrderRepository(dataDir string) (*JSONOrderRepository, error) {
	col, err := newJSONCollection(filepath.Join(dataDir, "orders.json"),
		func(o *models.Order) string { return o.ID })
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}
	return &JSONOrderRepository{col: col}, nil
}

func (r *JSONOrderRepository) GetAll() ([]models.Order, error) {
	orders, err := r.col.all()
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

func (r *JSONOrderRepository) GetByID(id string) (*models.Order, error) {
	o, err := r.col.get(id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return o, nil
}

func (r *JSONOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := r.col.insert(order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *JSONOrderRepository) UpdateStatus(id string, status string) error {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	orders, err := r.col.read()
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			orders[i].UpdatedAt = time.Now().UTC()
			return r.col.write(orders)
		}
	}
	return fmt.Errorf("order with ID %s not found for status update: %w", id, ErrNotFound)
}
