package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"artisanhub/internal/models"
	"artisanhub/internal/repositories"
)

// ArtisanPatch carries the fields of a partial artisan update; nil means unchanged.
type ArtisanPatch struct {
	Name            *string
	Phone           *string
	CraftType       *string
	Location        map[string]string
	Bio             *string
	ExperienceYears *int
	Verified        *bool
	Status          *string
	Rating          *float64
}

// ArtisanService handles business logic related to artisans.
type ArtisanService struct {
	repo   repositories.ArtisanRepository
	events eventEmitter
	logger *slog.Logger
}

func NewArtisanService(repo repositories.ArtisanRepository, publisher EventPublisher, logger *slog.Logger) *ArtisanService {
	return &ArtisanService{
		repo:   repo,
		events: eventEmitter{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// ListArtisans filters by craft type (case-insensitive) and, optionally, verification.
func (s *ArtisanService) ListArtisans(craftType string, verifiedOnly bool) ([]models.Artisan, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	result := make([]models.Artisan, 0, len(all))
	for _, a := range all {
		if craftType != "" && !strings.EqualFold(a.CraftType, craftType) {
			continue
		}
		if verifiedOnly && !a.Verified {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *ArtisanService) GetArtisan(id string) (*models.Artisan, error) {
	return s.repo.GetByID(id)
}

// CreateArtisan registers a new artisan; the email must be unused.
func (s *ArtisanService) CreateArtisan(artisan *models.Artisan) error {
	existing, err := s.repo.GetByEmail(artisan.Email)
	switch {
	case err == nil && existing != nil:
		return fmt.Errorf("email %s already registered: %w", artisan.Email, ErrConflict)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return err
	}

	if err := s.repo.Create(artisan); err != nil {
		return err
	}
	s.events.emit(EventArtisanCreated, map[string]any{
		"artisan_id": artisan.ID,
		"name":       artisan.Name,
		"craft_type": artisan.CraftType,
	})
	return nil
}

// UpdateArtisan applies patch to an existing artisan.
func (s *ArtisanService) UpdateArtisan(id string, patch ArtisanPatch) (*models.Artisan, error) {
	return s.repo.Mutate(id, func(a *models.Artisan) error {
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Phone != nil {
			a.Phone = *patch.Phone
		}
		if patch.CraftType != nil {
			a.CraftType = *patch.CraftType
		}
		if patch.Location != nil {
			a.Location = patch.Location
		}
		if patch.Bio != nil {
			a.Bio = *patch.Bio
		}
		if patch.ExperienceYears != nil {
			a.ExperienceYears = max(0, *patch.ExperienceYears)
		}
		if patch.Verified != nil {
			a.Verified = *patch.Verified
		}
		if patch.Status != nil {
			a.Status = *patch.Status
		}
		a.UpdatedAt = models.Now()
		if patch.Rating != nil {
			a.UpdateRating(*patch.Rating)
		}
		return nil
	})
}

// SetProfileImage records an uploaded profile picture.
func (s *ArtisanService) SetProfileImage(id, url string) (*models.Artisan, error) {
	return s.repo.Mutate(id, func(a *models.Artisan) error {
		a.SetProfileImage(url)
		return nil
	})
}

// CraftTypes returns the distinct craft types, sorted.
func (s *ArtisanService) CraftTypes() ([]string, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, a := range all {
		seen[a.CraftType] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}
