package models_test

import (
	"errors"
	"testing"

	"artisanhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtisan_RecordRoundTrip(t *testing.T) {
	a := models.NewArtisan("Meera", "meera@example.com", "9876543210", "Pottery",
		map[string]string{"city": "Jaipur", "state": "Rajasthan"}, "Third-generation potter", 12)
	a.UpdateRating(4.46)
	a.IncrementProducts()
	a.IncrementOrders()
	a.SetProfileImage("uploads/profiles/a/1.jpg")

	restored, err := models.ArtisanFromRecord(a.ToRecord())
	require.NoError(t, err)

	assert.Equal(t, a.ID, restored.ID)
	assert.Equal(t, a.Location, restored.Location)
	assert.Equal(t, 4.5, restored.Rating)
	assert.Equal(t, 1, restored.TotalProducts)
	assert.Equal(t, 1, restored.TotalOrders)
	assert.Equal(t, a.ProfileImage, restored.ProfileImage)
	assert.True(t, a.CreatedAt.Equal(restored.CreatedAt))
}

func TestArtisanFromRecord_MissingField(t *testing.T) {
	_, err := models.ArtisanFromRecord(map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, models.ErrMissingField))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, models.IsValidPhone("98765 43210"))
	assert.True(t, models.IsValidPhone("+91-6123456789"))
	assert.False(t, models.IsValidPhone("5123456789"))
	assert.False(t, models.IsValidPhone("12345"))
	assert.False(t, models.IsValidPhone(""))
}
