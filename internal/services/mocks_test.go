package services_test

import (
	"io"
	"log/slog"

	"artisanhub/internal/models"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// Mutate applies fn to the product registered for id, in place.
func (m *MockProductRepository) Mutate(id string, fn func(*models.Product) error) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := args.Get(0).(*models.Product)
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, args.Error(1)
}

// MutateMany expects a map[string]*models.Product as its first return value.
func (m *MockProductRepository) MutateMany(ids []string, fn func(map[string]*models.Product) error) error {
	args := m.Called(ids)
	if err := args.Error(1); err != nil {
		return err
	}
	stored := args.Get(0).(map[string]*models.Product)
	selected := make(map[string]*models.Product, len(ids))
	for _, id := range ids {
		selected[id] = stored[id]
	}
	return fn(selected)
}

// MockArtisanRepository is a mock implementation of repositories.ArtisanRepository
type MockArtisanRepository struct {
	mock.Mock
}

func (m *MockArtisanRepository) GetAll() ([]models.Artisan, error) {
	args := m.Called()
	return args.Get(0).([]models.Artisan), args.Error(1)
}

func (m *MockArtisanRepository) GetByID(id string) (*models.Artisan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artisan), args.Error(1)
}

func (m *MockArtisanRepository) GetByEmail(email string) (*models.Artisan, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artisan), args.Error(1)
}

func (m *MockArtisanRepository) Create(artisan *models.Artisan) error {
	args := m.Called(artisan)
	return args.Error(0)
}

func (m *MockArtisanRepository) Update(artisan *models.Artisan) error {
	args := m.Called(artisan)
	return args.Error(0)
}

func (m *MockArtisanRepository) Mutate(id string, fn func(*models.Artisan) error) (*models.Artisan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a := args.Get(0).(*models.Artisan)
	if err := fn(a); err != nil {
		return nil, err
	}
	return a, args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockPublisher records marketplace events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}
