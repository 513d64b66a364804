package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"artisanhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClayPot(opts ...models.ProductOption) *models.Product {
	return models.NewProduct("artisan-1", "Clay Pot", "A hand-thrown pot", 450, "Pottery", opts...)
}

func TestNewProduct_Defaults(t *testing.T) {
	p := newClayPot()

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1, p.StockQuantity)
	assert.Equal(t, models.StatusActive, p.Status)
	assert.False(t, p.Featured)
	assert.Empty(t, p.Tags)
	assert.Empty(t, p.Materials)
	assert.Empty(t, p.Images)
	assert.Nil(t, p.Weight)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestNewProduct_Options(t *testing.T) {
	p := newClayPot(
		models.WithSubcategory("Vases"),
		models.WithMaterials("clay", "glaze"),
		models.WithDimensions(map[string]any{"diameter": 7}),
		models.WithWeight(1.25),
		models.WithStock(-4),
		models.WithImages("a.jpg", "a.jpg", "", "b.jpg"),
	)

	assert.Equal(t, "Vases", p.Subcategory)
	assert.Equal(t, []string{"clay", "glaze"}, p.Materials)
	require.NotNil(t, p.Weight)
	assert.Equal(t, 1.25, *p.Weight)
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
}

func TestProduct_RecordRoundTrip(t *testing.T) {
	original := newClayPot(
		models.WithSubcategory("Vases"),
		models.WithMaterials("clay"),
		models.WithDimensions(map[string]any{"length": 10.0, "width": 5.0, "height": 2.0}),
		models.WithWeight(2),
		models.WithStock(12),
		models.WithImages("uploads/products/x/1.jpg"),
	)
	original.Tags = []string{"handmade"}
	original.ToggleFeatured()

	restored, err := models.ProductFromRecord(original.ToRecord())
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
	assert.True(t, original.UpdatedAt.Equal(restored.UpdatedAt))
	assert.Equal(t, original.ArtisanID, restored.ArtisanID)
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.Description, restored.Description)
	assert.Equal(t, original.Price, restored.Price)
	assert.Equal(t, original.Category, restored.Category)
	assert.Equal(t, original.Subcategory, restored.Subcategory)
	assert.Equal(t, original.Materials, restored.Materials)
	assert.Equal(t, original.Dimensions, restored.Dimensions)
	assert.Equal(t, *original.Weight, *restored.Weight)
	assert.Equal(t, original.StockQuantity, restored.StockQuantity)
	assert.Equal(t, original.Images, restored.Images)
	assert.Equal(t, original.Status, restored.Status)
	assert.Equal(t, original.Tags, restored.Tags)
	assert.True(t, restored.Featured)
}

func TestProduct_JSONRoundTrip(t *testing.T) {
	original := newClayPot(models.WithMaterials("clay"), models.WithStock(3))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stock_quantity":3`)

	var restored models.Product
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, 3, restored.StockQuantity)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
}

func TestProductFromRecord_CoercesLooseValues(t *testing.T) {
	p, err := models.ProductFromRecord(map[string]any{
		"id":             "p-1",
		"artisan_id":     "a-1",
		"name":           "Rug",
		"description":    "Woven rug",
		"price":          "1299.50",
		"category":       "Textiles",
		"stock_quantity": "4",
		"created_at":     "2024-03-01T10:15:30.123456",
	})
	require.NoError(t, err)

	assert.Equal(t, 1299.50, p.Price)
	assert.Equal(t, 4, p.StockQuantity)
	assert.Equal(t, models.StatusActive, p.Status)
	assert.False(t, p.Featured)
	assert.Empty(t, p.Tags)
	assert.Equal(t, 2024, p.CreatedAt.Year())
}

func TestProductFromRecord_MissingRequiredField(t *testing.T) {
	rec := newClayPot().ToRecord()
	for _, field := range []string{"artisan_id", "name", "description", "price", "category", "id", "created_at"} {
		t.Run(field, func(t *testing.T) {
			broken := make(map[string]any, len(rec))
			for k, v := range rec {
				broken[k] = v
			}
			delete(broken, field)

			_, err := models.ProductFromRecord(broken)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMissingField))

			var mf *models.MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, field, mf.Field)
		})
	}
}

func TestProduct_UpdateStock(t *testing.T) {
	for _, q := range []int{-10, -1, 0, 1, 3, 50} {
		p := newClayPot()
		p.UpdateStock(q)

		assert.Equal(t, max(0, q), p.StockQuantity)
		assert.Equal(t, p.StockQuantity == 0, p.Status == models.StatusOutOfStock, "quantity %d", q)
	}
}

func TestProduct_UpdateStockTransitions(t *testing.T) {
	p := newClayPot()
	before := p.UpdatedAt

	p.UpdateStock(0)
	assert.Equal(t, models.StatusOutOfStock, p.Status)
	assert.False(t, p.UpdatedAt.Before(before))

	p.UpdateStock(3)
	assert.Equal(t, models.StatusActive, p.Status)
}

func TestProduct_UpdateStockKeepsInactive(t *testing.T) {
	p := newClayPot()
	p.SetStatus(models.StatusInactive)

	p.UpdateStock(8)
	assert.Equal(t, models.StatusInactive, p.Status)

	p.UpdateStock(0)
	assert.Equal(t, models.StatusOutOfStock, p.Status)
}

func TestProduct_Images(t *testing.T) {
	p := newClayPot()

	assert.True(t, p.AddImage("u1"))
	assert.False(t, p.AddImage("u1"))
	assert.False(t, p.AddImage(""))
	assert.Equal(t, []string{"u1"}, p.Images)

	stamp := p.UpdatedAt
	assert.False(t, p.RemoveImage("missing"))
	assert.Equal(t, stamp, p.UpdatedAt)

	assert.True(t, p.RemoveImage("u1"))
	assert.Empty(t, p.Images)
}

func TestProduct_ToggleFeatured(t *testing.T) {
	p := newClayPot()
	assert.True(t, p.ToggleFeatured())
	assert.False(t, p.ToggleFeatured())
}

func TestProduct_DimensionsText(t *testing.T) {
	tests := []struct {
		name string
		dims map[string]any
		want string
	}{
		{"box", map[string]any{"length": 10, "width": 5, "height": 2}, "10L × 5W × 2H"},
		{"flat", map[string]any{"length": 30.5, "width": 20}, "30.5L × 20W"},
		{"round", map[string]any{"diameter": 7}, "Diameter: 7"},
		{"other", map[string]any{"depth": 4, "circumference": 22}, "circumference: 22, depth: 4"},
		{"nil", nil, "Not specified"},
		{"empty", map[string]any{}, "Not specified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newClayPot(models.WithDimensions(tt.dims))
			assert.Equal(t, tt.want, p.DimensionsText())
		})
	}
}

func TestProduct_IsLowStock(t *testing.T) {
	p := newClayPot()
	for q := 0; q <= 8; q++ {
		p.UpdateStock(q)
		assert.Equal(t, q > 0 && q <= models.DefaultLowStockThreshold, p.IsLowStock(models.DefaultLowStockThreshold), "quantity %d", q)
	}
}

func TestParseProductStatus(t *testing.T) {
	st, err := models.ParseProductStatus("inactive")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, st)

	_, err = models.ParseProductStatus("archived")
	assert.Error(t, err)
}
