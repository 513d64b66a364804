package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Artisan is a seller on the marketplace.
type Artisan struct {
	ID              string            `gorm:"primaryKey;type:varchar(36)"`
	Name            string            `gorm:"type:varchar(200)"`
	Email           string            `gorm:"uniqueIndex;type:varchar(255)"`
	Phone           string            `gorm:"type:varchar(32)"`
	CraftType       string            `gorm:"index;type:varchar(100)"`
	Location        map[string]string `gorm:"serializer:json"`
	Bio             string            `gorm:"type:text"`
	ExperienceYears int
	ProfileImage    string
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
	Status          string    `gorm:"type:varchar(20)"`
	Verified        bool
	Rating          float64
	TotalProducts   int
	TotalOrders     int
}

// NewArtisan builds an artisan profile with a fresh id. Negative experience is stored as 0.
func NewArtisan(name, email, phone, craftType string, location map[string]string, bio string, experienceYears int) *Artisan {
	ts := Now()
	return &Artisan{
		ID:              uuid.New().String(),
		Name:            name,
		Email:           email,
		Phone:           phone,
		CraftType:       craftType,
		Location:        location,
		Bio:             bio,
		ExperienceYears: max(0, experienceYears),
		CreatedAt:       ts,
		UpdatedAt:       ts,
		Status:          "active",
	}
}

// UpdateRating stores the rating rounded to one decimal place.
func (a *Artisan) UpdateRating(rating float64) {
	a.Rating = math.Round(rating*10) / 10
	a.UpdatedAt = Now()
}

func (a *Artisan) IncrementProducts() {
	a.TotalProducts++
	a.UpdatedAt = Now()
}

func (a *Artisan) IncrementOrders() {
	a.TotalOrders++
	a.UpdatedAt = Now()
}

// SetProfileImage replaces the profile picture URL.
func (a *Artisan) SetProfileImage(url string) {
	a.ProfileImage = url
	a.UpdatedAt = Now()
}

func (a *Artisan) ToRecord() map[string]any {
	var bio, profileImage any
	if a.Bio != "" {
		bio = a.Bio
	}
	if a.ProfileImage != "" {
		profileImage = a.ProfileImage
	}
	location := a.Location
	if location == nil {
		location = map[string]string{}
	}
	return map[string]any{
		"id":               a.ID,
		"name":             a.Name,
		"email":            a.Email,
		"phone":            a.Phone,
		"craft_type":       a.CraftType,
		"location":         location,
		"bio":              bio,
		"experience_years": a.ExperienceYears,
		"profile_image":    profileImage,
		"created_at":       formatTime(a.CreatedAt),
		"updated_at":       formatTime(a.UpdatedAt),
		"status":           a.Status,
		"verified":         a.Verified,
		"rating":           a.Rating,
		"total_products":   a.TotalProducts,
		"total_orders":     a.TotalOrders,
	}
}

// ArtisanFromRecord rebuilds an artisan from a stored record.
func ArtisanFromRecord(rec map[string]any) (*Artisan, error) {
	if err := requireFields("artisan", rec,
		"name", "email", "phone", "craft_type", "location", "id", "created_at"); err != nil {
		return nil, err
	}

	location, err := cast.ToStringMapStringE(rec["location"])
	if err != nil {
		return nil, fmt.Errorf("artisan %v: invalid location: %w", rec["id"], err)
	}
	experience := 0
	if v := rec["experience_years"]; v != nil {
		if experience, err = cast.ToIntE(v); err != nil {
			return nil, fmt.Errorf("artisan %v: invalid experience_years: %w", rec["id"], err)
		}
	}

	a := NewArtisan(
		cast.ToString(rec["name"]),
		cast.ToString(rec["email"]),
		cast.ToString(rec["phone"]),
		cast.ToString(rec["craft_type"]),
		location,
		cast.ToString(rec["bio"]),
		experience,
	)
	a.ID = cast.ToString(rec["id"])
	a.ProfileImage = cast.ToString(rec["profile_image"])
	if a.CreatedAt, err = cast.ToTimeE(rec["created_at"]); err != nil {
		return nil, fmt.Errorf("artisan %s: invalid created_at: %w", a.ID, err)
	}
	if v := rec["updated_at"]; v != nil {
		if a.UpdatedAt, err = cast.ToTimeE(v); err != nil {
			return nil, fmt.Errorf("artisan %s: invalid updated_at: %w", a.ID, err)
		}
	}
	if v := rec["status"]; v != nil {
		a.Status = cast.ToString(v)
	}
	a.Verified = cast.ToBool(rec["verified"])
	a.Rating = cast.ToFloat64(rec["rating"])
	a.TotalProducts = cast.ToInt(rec["total_products"])
	a.TotalOrders = cast.ToInt(rec["total_orders"])
	return a, nil
}

func (a Artisan) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToRecord())
}

func (a *Artisan) UnmarshalJSON(data []byte) error {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := ArtisanFromRecord(rec)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}

// IsValidPhone accepts Indian mobile numbers: ten digits starting with 6-9,
// optionally prefixed by the 91 country code.
func IsValidPhone(phone string) bool {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 10:
		return strings.ContainsRune("6789", rune(digits[0]))
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return strings.ContainsRune("6789", rune(digits[2]))
	}
	return false
}
