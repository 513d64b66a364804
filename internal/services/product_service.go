package services

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"artisanhub/internal/models"
	"artisanhub/internal/repositories"
)

// ProductFilter narrows ListProducts. Search takes precedence over Category,
// which takes precedence over ArtisanID. An empty Status means active only;
// "all" disables the status filter.
type ProductFilter struct {
	Search    string
	Category  string
	ArtisanID string
	Featured  bool
	Status    string
}

// ProductPatch carries the fields of a partial update; nil means unchanged.
// ClearWeight removes a recorded weight.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *string
	Subcategory   *string
	Materials     []string
	Dimensions    map[string]any
	Weight        *float64
	ClearWeight   bool
	StockQuantity *int
	Status        *models.ProductStatus
	Featured      *bool
	Tags          []string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	artisans repositories.ArtisanRepository
	events   eventEmitter
	lowStock int
	logger   *slog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, artisans repositories.ArtisanRepository,
	publisher EventPublisher, lowStockThreshold int, logger *slog.Logger) *ProductService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = models.DefaultLowStockThreshold
	}
	return &ProductService{
		repo:     repo,
		artisans: artisans,
		events:   eventEmitter{publisher: publisher, logger: logger},
		lowStock: lowStockThreshold,
		logger:   logger,
	}
}

// LowStockThreshold is the configured threshold used for low-stock checks.
func (s *ProductService) LowStockThreshold() int {
	return s.lowStock
}

// ListProducts returns the products matching f.
func (s *ProductService) ListProducts(f ProductFilter) ([]models.Product, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	status := f.Status
	if status == "" {
		status = string(models.StatusActive)
	}

	result := make([]models.Product, 0, len(all))
	for _, p := range all {
		switch {
		case search != "":
			if !matchesSearch(&p, search) {
				continue
			}
		case f.Category != "":
			if !strings.EqualFold(p.Category, f.Category) {
				continue
			}
		case f.ArtisanID != "":
			if p.ArtisanID != f.ArtisanID {
				continue
			}
		}
		if f.Featured && !p.Featured {
			continue
		}
		if status != "all" && string(p.Status) != status {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func matchesSearch(p *models.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, m := range p.Materials {
		if strings.Contains(strings.ToLower(m), query) {
			return true
		}
	}
	return false
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct stores a new listing for an existing artisan and bumps the
// artisan's product count.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if _, err := s.artisans.GetByID(product.ArtisanID); err != nil {
		return fmt.Errorf("cannot create product: %w", err)
	}

	if err := s.repo.Create(product); err != nil {
		return err
	}

	if _, err := s.artisans.Mutate(product.ArtisanID, func(a *models.Artisan) error {
		a.IncrementProducts()
		return nil
	}); err != nil {
		s.logger.Warn("failed to update artisan product count", "artisan_id", product.ArtisanID, "error", err)
	}

	s.events.emit(EventProductCreated, map[string]any{
		"product_id": product.ID,
		"artisan_id": product.ArtisanID,
		"name":       product.Name,
		"category":   product.Category,
		"price":      product.Price,
	})
	return nil
}

// UpdateProduct applies patch to the product with the given id.
func (s *ProductService) UpdateProduct(id string, patch ProductPatch) (*models.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
	}

	p, err := s.repo.Mutate(id, func(p *models.Product) error {
		return applyPatch(p, patch)
	})
	if err != nil {
		return nil, err
	}
	if patch.StockQuantity != nil {
		s.events.emitStock(p.ID, p.ArtisanID, p.StockQuantity, s.lowStock)
	}
	return p, nil
}

func applyPatch(p *models.Product, patch ProductPatch) error {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		p.Subcategory = *patch.Subcategory
	}
	if patch.Materials != nil {
		p.Materials = patch.Materials
	}
	if patch.Dimensions != nil {
		p.Dimensions = patch.Dimensions
	}
	if patch.ClearWeight {
		p.Weight = nil
	} else if patch.Weight != nil {
		p.Weight = patch.Weight
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
	p.UpdatedAt = models.Now()
	if patch.StockQuantity != nil {
		p.UpdateStock(*patch.StockQuantity)
	}
	if patch.Status != nil {
		if *patch.Status == models.StatusActive && p.StockQuantity == 0 {
			return fmt.Errorf("product %s has no stock and cannot be active: %w", p.ID, ErrInvalidInput)
		}
		p.SetStatus(*patch.Status)
	}
	return nil
}

// UpdateStock sets the stock level of a product.
func (s *ProductService) UpdateStock(id string, quantity int) (*models.Product, error) {
	return s.UpdateProduct(id, ProductPatch{StockQuantity: &quantity})
}

// AddImage attaches an uploaded image URL to a product.
func (s *ProductService) AddImage(id, url string) (*models.Product, error) {
	var added bool
	p, err := s.repo.Mutate(id, func(p *models.Product) error {
		added = p.AddImage(url)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if added {
		s.events.emit(EventProductImageAdded, map[string]any{"product_id": p.ID, "url": url})
	}
	return p, nil
}

// RemoveImage detaches url from a product. The boolean reports whether it was attached.
func (s *ProductService) RemoveImage(id, url string) (*models.Product, bool, error) {
	var removed bool
	p, err := s.repo.Mutate(id, func(p *models.Product) error {
		removed = p.RemoveImage(url)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return p, removed, nil
}

// ToggleFeatured flips the featured flag of a product.
func (s *ProductService) ToggleFeatured(id string) (*models.Product, error) {
	return s.repo.Mutate(id, func(p *models.Product) error {
		p.ToggleFeatured()
		return nil
	})
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// ProductIDs lists the ids of every stored product.
func (s *ProductService) ProductIDs() ([]string, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Categories returns the distinct product categories, sorted.
func (s *ProductService) Categories() ([]string, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, p := range all {
		seen[p.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// LowStock returns products whose stock is positive but at or below the threshold.
func (s *ProductService) LowStock() ([]models.Product, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	var low []models.Product
	for _, p := range all {
		if p.IsLowStock(s.lowStock) {
			low = append(low, p)
		}
	}
	return low, nil
}
