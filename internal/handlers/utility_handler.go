package handlers

import (
	"log/slog"
	"time"

	"artisanhub/internal/media"
	"artisanhub/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UtilityHandler serves health, dashboard and lookup endpoints.
type UtilityHandler struct {
	dashboard *services.DashboardService
	products  *services.ProductService
	artisans  *services.ArtisanService
	media     *media.Service
	logger    *slog.Logger
	version   string
}

func NewUtilityHandler(dashboard *services.DashboardService, products *services.ProductService,
	artisans *services.ArtisanService, mediaService *media.Service, version string, logger *slog.Logger) *UtilityHandler {
	return &UtilityHandler{
		dashboard: dashboard,
		products:  products,
		artisans:  artisans,
		media:     mediaService,
		logger:    logger,
		version:   version,
	}
}

func (h *UtilityHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/health", h.HandleHealth)
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/categories", h.HandleCategories)
	router.Get("/craft-types", h.HandleCraftTypes)
	router.Post("/maintenance/cleanup-images", auth, h.HandleCleanupImages)
}

func (h *UtilityHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"version":      h.version,
		"time":         time.Now().Format(time.RFC3339),
		"storage_type": h.media.StorageType(),
		"ai_enabled":   h.media.AIEnabled(),
	})
}

func (h *UtilityHandler) HandleDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats()
	if err != nil {
		h.logger.Error("dashboard stats failed", "error", err)
		return failWith(c, "Could not compute dashboard", err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

func (h *UtilityHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.products.Categories()
	if err != nil {
		return failWith(c, "Could not retrieve categories", err)
	}
	return c.JSON(fiber.Map{"success": true, "categories": categories})
}

func (h *UtilityHandler) HandleCraftTypes(c *fiber.Ctx) error {
	types, err := h.artisans.CraftTypes()
	if err != nil {
		return failWith(c, "Could not retrieve craft types", err)
	}
	return c.JSON(fiber.Map{"success": true, "craft_types": types})
}

// HandleCleanupImages removes stored images of products that no longer exist.
func (h *UtilityHandler) HandleCleanupImages(c *fiber.Ctx) error {
	ids, err := h.products.ProductIDs()
	if err != nil {
		return failWith(c, "Could not list products", err)
	}
	removed, err := h.media.CleanupOrphanedImages(c.UserContext(), ids)
	if err != nil {
		h.logger.Error("image cleanup failed", "removed", len(removed), "error", err)
		return failWith(c, "Image cleanup failed", err)
	}
	if removed == nil {
		removed = []string{}
	}
	return c.JSON(fiber.Map{"success": true, "removed": removed})
}
