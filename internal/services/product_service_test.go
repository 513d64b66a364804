package services_test

import (
	"errors"
	"testing"

	"artisanhub/internal/models"
	"artisanhub/internal/repositories"
	"artisanhub/internal/services"
	"artisanhub/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogue() []models.Product {
	vase := models.NewProduct("a1", "Blue Vase", "Glazed stoneware vase", 1200, "Pottery", models.WithMaterials("clay", "cobalt glaze"))
	shawl := models.NewProduct("a2", "Pashmina Shawl", "Hand-woven shawl", 4500, "Textiles", models.WithStock(3))
	bowl := models.NewProduct("a1", "Terracotta Bowl", "Rustic serving bowl", 300, "Pottery")
	bowl.UpdateStock(0)
	lamp := models.NewProduct("a3", "Brass Lamp", "Engraved diya", 800, "Metalwork", models.WithStock(20))
	lamp.SetStatus(models.StatusInactive)
	lamp.Featured = true
	vase.Featured = true
	return []models.Product{*vase, *shawl, *bowl, *lamp}
}

func TestProductService_ListProducts(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("GetAll").Return(catalogue(), nil)
	svc := services.NewProductService(repo, new(MockArtisanRepository), nil, 0, discardLogger())

	names := func(ps []models.Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter services.ProductFilter
		want   []string
	}{
		{"default is active only", services.ProductFilter{}, []string{"Blue Vase", "Pashmina Shawl"}},
		{"all statuses", services.ProductFilter{Status: "all"}, []string{"Blue Vase", "Pashmina Shawl", "Terracotta Bowl", "Brass Lamp"}},
		{"category is case-insensitive", services.ProductFilter{Category: "pottery", Status: "all"}, []string{"Blue Vase", "Terracotta Bowl"}},
		{"search matches materials", services.ProductFilter{Search: "COBALT"}, []string{"Blue Vase"}},
		{"search wins over category", services.ProductFilter{Search: "shawl", Category: "Pottery"}, []string{"Pashmina Shawl"}},
		{"artisan", services.ProductFilter{ArtisanID: "a1", Status: "out_of_stock"}, []string{"Terracotta Bowl"}},
		{"featured", services.ProductFilter{Featured: true, Status: "all"}, []string{"Blue Vase", "Brass Lamp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListProducts(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	repo := new(MockProductRepository)
	artisans := new(MockArtisanRepository)
	publisher := new(MockPublisher)
	svc := services.NewProductService(repo, artisans, publisher, 5, discardLogger())

	artisan := models.NewArtisan("Meera", "meera@example.com", "9876543210", "Pottery", nil, "", 3)
	product := models.NewProduct(artisan.ID, "Blue Vase", "Glazed vase", 1200, "Pottery")

	artisans.On("GetByID", artisan.ID).Return(artisan, nil).Once()
	repo.On("Create", product).Return(nil).Once()
	artisans.On("Mutate", artisan.ID).Return(artisan, nil).Once()
	publisher.On("Publish", rabbitmq.Exchange, services.EventProductCreated, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.CreateProduct(product))
	assert.Equal(t, 1, artisan.TotalProducts)
	repo.AssertExpectations(t)
	artisans.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateProduct_UnknownArtisan(t *testing.T) {
	repo := new(MockProductRepository)
	artisans := new(MockArtisanRepository)
	svc := services.NewProductService(repo, artisans, nil, 5, discardLogger())

	artisans.On("GetByID", "ghost").Return(nil, repositories.ErrNotFound).Once()
	err := svc.CreateProduct(models.NewProduct("ghost", "x", "y", 1, "z"))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateStock_EmitsOutOfStock(t *testing.T) {
	repo := new(MockProductRepository)
	publisher := new(MockPublisher)
	svc := services.NewProductService(repo, new(MockArtisanRepository), publisher, 5, discardLogger())

	product := models.NewProduct("a1", "Vase", "d", 10, "Pottery", models.WithStock(4))
	repo.On("Mutate", product.ID).Return(product, nil)
	publisher.On("Publish", rabbitmq.Exchange, services.EventProductOutOfStock, mock.Anything).Return(nil).Once()
	publisher.On("Publish", rabbitmq.Exchange, services.EventProductStockLow, mock.Anything).Return(errors.New("broker down")).Once()

	updated, err := svc.UpdateStock(product.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.Equal(t, models.StatusOutOfStock, updated.Status)

	// a failing broker never fails the update
	updated, err = svc.UpdateStock(product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	publisher.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	repo := new(MockProductRepository)
	svc := services.NewProductService(repo, new(MockArtisanRepository), nil, 5, discardLogger())

	product := models.NewProduct("a1", "Vase", "d", 10, "Pottery", models.WithWeight(1.5))
	created := product.CreatedAt
	repo.On("Mutate", product.ID).Return(product, nil)

	name := "Tall Vase"
	price := 25.5
	inactive := models.StatusInactive
	updated, err := svc.UpdateProduct(product.ID, services.ProductPatch{
		Name:      &name,
		Price:     &price,
		Status:    &inactive,
		Materials: []string{"clay"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tall Vase", updated.Name)
	assert.Equal(t, 25.5, updated.Price)
	assert.Equal(t, models.StatusInactive, updated.Status)
	assert.Equal(t, []string{"clay"}, updated.Materials)
	assert.True(t, created.Equal(updated.CreatedAt))

	updated, err = svc.UpdateProduct(product.ID, services.ProductPatch{ClearWeight: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Weight)

	negative := -1.0
	_, err = svc.UpdateProduct(product.ID, services.ProductPatch{Price: &negative})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Equal(t, 25.5, product.Price)
}

func TestProductService_UpdateProduct_ActiveNeedsStock(t *testing.T) {
	repo := new(MockProductRepository)
	svc := services.NewProductService(repo, new(MockArtisanRepository), nil, 5, discardLogger())

	product := models.NewProduct("a1", "Vase", "d", 10, "Pottery", models.WithStock(2))
	repo.On("Mutate", product.ID).Return(product, nil)

	zero := 0
	active := models.StatusActive
	_, err := svc.UpdateProduct(product.ID, services.ProductPatch{StockQuantity: &zero, Status: &active})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	product.UpdateStock(0)
	_, err = svc.UpdateProduct(product.ID, services.ProductPatch{Status: &active})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	restock := 4
	updated, err := svc.UpdateProduct(product.ID, services.ProductPatch{StockQuantity: &restock, Status: &active})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, 4, updated.StockQuantity)
}

func TestProductService_Images(t *testing.T) {
	repo := new(MockProductRepository)
	publisher := new(MockPublisher)
	svc := services.NewProductService(repo, new(MockArtisanRepository), publisher, 5, discardLogger())

	product := models.NewProduct("a1", "Vase", "d", 10, "Pottery")
	repo.On("Mutate", product.ID).Return(product, nil)
	publisher.On("Publish", rabbitmq.Exchange, services.EventProductImageAdded, mock.Anything).Return(nil).Once()

	_, err := svc.AddImage(product.ID, "/uploads/products/p/1.jpg")
	require.NoError(t, err)
	_, err = svc.AddImage(product.ID, "/uploads/products/p/1.jpg")
	require.NoError(t, err)
	assert.Len(t, product.Images, 1)

	_, removed, err := svc.RemoveImage(product.ID, "/uploads/products/p/1.jpg")
	require.NoError(t, err)
	assert.True(t, removed)
	_, removed, err = svc.RemoveImage(product.ID, "/uploads/products/p/1.jpg")
	require.NoError(t, err)
	assert.False(t, removed)

	p, err := svc.ToggleFeatured(product.ID)
	require.NoError(t, err)
	assert.True(t, p.Featured)
	publisher.AssertExpectations(t)
}

func TestProductService_CategoriesAndLowStock(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("GetAll").Return(catalogue(), nil)
	svc := services.NewProductService(repo, new(MockArtisanRepository), nil, 0, discardLogger())

	categories, err := svc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Metalwork", "Pottery", "Textiles"}, categories)

	low, err := svc.LowStock()
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Blue Vase", low[0].Name)
	assert.Equal(t, "Pashmina Shawl", low[1].Name)

	ids, err := svc.ProductIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}
