package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// ProductStatus is the availability state of a listing.
type ProductStatus string

const (
	StatusActive     ProductStatus = "active"
	StatusInactive   ProductStatus = "inactive"
	StatusOutOfStock ProductStatus = "out_of_stock"
)

// DefaultLowStockThreshold is the quantity at or below which a listing counts as low on stock.
const DefaultLowStockThreshold = 5

// ParseProductStatus validates a status string.
func ParseProductStatus(s string) (ProductStatus, error) {
	switch st := ProductStatus(strings.TrimSpace(s)); st {
	case StatusActive, StatusInactive, StatusOutOfStock:
		return st, nil
	default:
		return "", fmt.Errorf("invalid product status: %s", s)
	}
}

// Product represents an artisan's marketplace listing.
type Product struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)"`
	ArtisanID     string         `gorm:"index;type:varchar(36)"`
	Name          string         `gorm:"type:varchar(200)"`
	Description   string         `gorm:"type:text"`
	Price         float64        `gorm:"not null"`
	Category      string         `gorm:"index;type:varchar(100)"`
	Subcategory   string         `gorm:"type:varchar(100)"`
	Materials     []string       `gorm:"serializer:json"`
	Dimensions    map[string]any `gorm:"serializer:json"`
	Weight        *float64
	StockQuantity int
	Images        []string      `gorm:"serializer:json"`
	CreatedAt     time.Time     `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime:false"`
	Status        ProductStatus `gorm:"index;type:varchar(20)"`
	Tags          []string      `gorm:"serializer:json"`
	Featured      bool
}

// ProductOption sets an optional attribute on a new Product.
type ProductOption func(*Product)

func WithSubcategory(subcategory string) ProductOption {
	return func(p *Product) { p.Subcategory = subcategory }
}

func WithMaterials(materials ...string) ProductOption {
	return func(p *Product) {
		if len(materials) > 0 {
			p.Materials = slices.Clone(materials)
		}
	}
}

func WithDimensions(dimensions map[string]any) ProductOption {
	return func(p *Product) { p.Dimensions = dimensions }
}

func WithWeight(weight float64) ProductOption {
	return func(p *Product) { p.Weight = &weight }
}

// WithStock sets the initial quantity; negative values are clamped to 0.
func WithStock(quantity int) ProductOption {
	return func(p *Product) { p.StockQuantity = max(0, quantity) }
}

func WithImages(urls ...string) ProductOption {
	return func(p *Product) {
		for _, u := range urls {
			if u != "" && !slices.Contains(p.Images, u) {
				p.Images = append(p.Images, u)
			}
		}
	}
}

// NewProduct builds a listing with a fresh id and timestamps. Stock defaults to 1.
func NewProduct(artisanID, name, description string, price float64, category string, opts ...ProductOption) *Product {
	ts := Now()
	p := &Product{
		ID:            uuid.New().String(),
		ArtisanID:     artisanID,
		Name:          name,
		Description:   description,
		Price:         price,
		Category:      category,
		Materials:     []string{},
		StockQuantity: 1,
		Images:        []string{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
		Status:        StatusActive,
		Tags:          []string{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Product) touch() {
	p.UpdatedAt = Now()
}

// UpdateStock sets the quantity (never below 0) and derives the status from it.
// An inactive listing stays inactive when restocked.
func (p *Product) UpdateStock(quantity int) {
	p.StockQuantity = max(0, quantity)
	if p.StockQuantity == 0 {
		p.Status = StatusOutOfStock
	} else if p.Status == StatusOutOfStock {
		p.Status = StatusActive
	}
	p.touch()
}

// SetStatus records a manual status change.
func (p *Product) SetStatus(status ProductStatus) {
	p.Status = status
	p.touch()
}

// AddImage appends url unless it is empty or already present.
func (p *Product) AddImage(url string) bool {
	if url == "" || slices.Contains(p.Images, url) {
		return false
	}
	p.Images = append(p.Images, url)
	p.touch()
	return true
}

// RemoveImage drops url from the gallery if present.
func (p *Product) RemoveImage(url string) bool {
	i := slices.Index(p.Images, url)
	if i < 0 {
		return false
	}
	p.Images = slices.Delete(p.Images, i, i+1)
	p.touch()
	return true
}

// ToggleFeatured flips the featured flag and returns the new value.
func (p *Product) ToggleFeatured() bool {
	p.Featured = !p.Featured
	p.touch()
	return p.Featured
}

// DimensionsText renders the dimensions for display.
func (p *Product) DimensionsText() string {
	d := p.Dimensions
	if len(d) == 0 {
		return "Not specified"
	}

	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := d[k]; !ok {
				return false
			}
		}
		return true
	}

	switch {
	case has("length", "width", "height"):
		return fmt.Sprintf("%vL × %vW × %vH", d["length"], d["width"], d["height"])
	case has("length", "width"):
		return fmt.Sprintf("%vL × %vW", d["length"], d["width"])
	case has("diameter"):
		return fmt.Sprintf("Diameter: %v", d["diameter"])
	}

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, d[k]))
	}
	return strings.Join(parts, ", ")
}

// IsLowStock reports whether 0 < stock <= threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQuantity > 0 && p.StockQuantity <= threshold
}

// ToRecord flattens the product into a document-store record.
func (p *Product) ToRecord() map[string]any {
	var subcategory, weight any
	if p.Subcategory != "" {
		subcategory = p.Subcategory
	}
	if p.Weight != nil {
		weight = *p.Weight
	}
	var dimensions any
	if p.Dimensions != nil {
		dimensions = p.Dimensions
	}
	return map[string]any{
		"id":             p.ID,
		"artisan_id":     p.ArtisanID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"category":       p.Category,
		"subcategory":    subcategory,
		"materials":      nonNil(p.Materials),
		"dimensions":     dimensions,
		"weight":         weight,
		"stock_quantity": p.StockQuantity,
		"images":         nonNil(p.Images),
		"created_at":     formatTime(p.CreatedAt),
		"updated_at":     formatTime(p.UpdatedAt),
		"status":         string(p.Status),
		"tags":           nonNil(p.Tags),
		"featured":       p.Featured,
	}
}

// ProductFromRecord rebuilds a product from a stored record, keeping its id and
// timestamps. Loose values (numeric strings, float stock counts) are coerced.
func ProductFromRecord(rec map[string]any) (*Product, error) {
	if err := requireFields("product", rec,
		"artisan_id", "name", "description", "price", "category", "id", "created_at"); err != nil {
		return nil, err
	}

	price, err := cast.ToFloat64E(rec["price"])
	if err != nil {
		return nil, fmt.Errorf("product %v: invalid price: %w", rec["id"], err)
	}

	var opts []ProductOption
	if v := rec["subcategory"]; v != nil {
		opts = append(opts, WithSubcategory(cast.ToString(v)))
	}
	if v := rec["materials"]; v != nil {
		materials, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("product %v: invalid materials: %w", rec["id"], err)
		}
		opts = append(opts, WithMaterials(materials...))
	}
	if v := rec["dimensions"]; v != nil {
		dims, err := cast.ToStringMapE(v)
		if err != nil {
			return nil, fmt.Errorf("product %v: invalid dimensions: %w", rec["id"], err)
		}
		opts = append(opts, WithDimensions(dims))
	}
	if v := rec["weight"]; v != nil {
		weight, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("product %v: invalid weight: %w", rec["id"], err)
		}
		opts = append(opts, WithWeight(weight))
	}
	if v := rec["stock_quantity"]; v != nil {
		stock, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("product %v: invalid stock_quantity: %w", rec["id"], err)
		}
		opts = append(opts, WithStock(stock))
	}
	if v := rec["images"]; v != nil {
		images, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("product %v: invalid images: %w", rec["id"], err)
		}
		opts = append(opts, WithImages(images...))
	}

	p := NewProduct(
		cast.ToString(rec["artisan_id"]),
		cast.ToString(rec["name"]),
		cast.ToString(rec["description"]),
		price,
		cast.ToString(rec["category"]),
		opts...,
	)

	p.ID = cast.ToString(rec["id"])
	if p.CreatedAt, err = cast.ToTimeE(rec["created_at"]); err != nil {
		return nil, fmt.Errorf("product %s: invalid created_at: %w", p.ID, err)
	}
	p.UpdatedAt = Now()
	if v := rec["updated_at"]; v != nil {
		if p.UpdatedAt, err = cast.ToTimeE(v); err != nil {
			return nil, fmt.Errorf("product %s: invalid updated_at: %w", p.ID, err)
		}
	}
	p.Status = StatusActive
	if v := rec["status"]; v != nil {
		if p.Status, err = ParseProductStatus(cast.ToString(v)); err != nil {
			return nil, fmt.Errorf("product %s: %w", p.ID, err)
		}
	}
	if v := rec["tags"]; v != nil {
		tags, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid tags: %w", p.ID, err)
		}
		p.Tags = nonNil(tags)
	}
	if v := rec["featured"]; v != nil {
		if p.Featured, err = cast.ToBoolE(v); err != nil {
			return nil, fmt.Errorf("product %s: invalid featured: %w", p.ID, err)
		}
	}
	return p, nil
}

// MarshalJSON encodes the product as its record.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToRecord())
}

// UnmarshalJSON decodes a stored record via ProductFromRecord.
func (p *Product) UnmarshalJSON(data []byte) error {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := ProductFromRecord(rec)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
