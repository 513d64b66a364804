package services

import "artisanhub/internal/models"

// DashboardStats summarises the marketplace.
type DashboardStats struct {
	TotalArtisans    int      `json:"total_artisans"`
	TotalProducts    int      `json:"total_products"`
	VerifiedArtisans int      `json:"verified_artisans"`
	ActiveProducts   int      `json:"active_products"`
	LowStockProducts int      `json:"low_stock_products"`
	Categories       []string `json:"categories"`
	CraftTypes       []string `json:"craft_types"`
}

type DashboardService struct {
	products *ProductService
	artisans *ArtisanService
}

func NewDashboardService(products *ProductService, artisans *ArtisanService) *DashboardService {
	return &DashboardService{products: products, artisans: artisans}
}

func (s *DashboardService) Stats() (*DashboardStats, error) {
	products, err := s.products.ListProducts(ProductFilter{Status: "all"})
	if err != nil {
		return nil, err
	}
	artisans, err := s.artisans.ListArtisans("", false)
	if err != nil {
		return nil, err
	}
	categories, err := s.products.Categories()
	if err != nil {
		return nil, err
	}
	craftTypes, err := s.artisans.CraftTypes()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalArtisans: len(artisans),
		TotalProducts: len(products),
		Categories:    categories,
		CraftTypes:    craftTypes,
	}
	for _, a := range artisans {
		if a.Verified {
			stats.VerifiedArtisans++
		}
	}
	for _, p := range products {
		if p.Status == models.StatusActive {
			stats.ActiveProducts++
		}
		if p.IsLowStock(s.products.LowStockThreshold()) {
			stats.LowStockProducts++
		}
	}
	return stats, nil
}
