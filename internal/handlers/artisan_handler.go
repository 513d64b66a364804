package handlers

import (
	"log/slog"
	"strings"

	"artisanhub/internal/display"
	"artisanhub/internal/media"
	"artisanhub/internal/models"
	"artisanhub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// ArtisanHandler handles HTTP requests for artisan profiles.
type ArtisanHandler struct {
	artisans *services.ArtisanService
	products *services.ProductService
	media    *media.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewArtisanHandler(artisans *services.ArtisanService, products *services.ProductService,
	mediaService *media.Service, logger *slog.Logger) *ArtisanHandler {
	return &ArtisanHandler{
		artisans: artisans,
		products: products,
		media:    mediaService,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the artisan routes. Registration is open to anyone.
func (h *ArtisanHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	artisanRoutes := router.Group("/artisans")
	artisanRoutes.Get("/", h.HandleListArtisans)
	artisanRoutes.Get("/:id", h.HandleGetArtisan)
	artisanRoutes.Post("/", h.HandleCreateArtisan)
	artisanRoutes.Patch("/:id", auth, h.HandleUpdateArtisan)
	artisanRoutes.Post("/:id/profile-image", auth, h.HandleUploadProfileImage)
}

func artisanView(a *models.Artisan) fiber.Map {
	v := fiber.Map(a.ToRecord())
	v["member_since"] = display.ReadableDate(a.CreatedAt)
	return v
}

func (h *ArtisanHandler) HandleListArtisans(c *fiber.Ctx) error {
	artisans, err := h.artisans.ListArtisans(c.Query("craft_type"), cast.ToBool(c.Query("verified")))
	if err != nil {
		h.logger.Error("list artisans failed", "error", err)
		return failWith(c, "Could not retrieve artisans", err)
	}
	views := make([]fiber.Map, 0, len(artisans))
	for i := range artisans {
		views = append(views, artisanView(&artisans[i]))
	}
	return c.JSON(fiber.Map{"success": true, "count": len(views), "artisans": views})
}

// HandleGetArtisan returns the artisan together with all of their listings.
func (h *ArtisanHandler) HandleGetArtisan(c *fiber.Ctx) error {
	a, err := h.artisans.GetArtisan(c.Params("id"))
	if err != nil {
		return failWith(c, "Artisan not found", err)
	}
	products, err := h.products.ListProducts(services.ProductFilter{ArtisanID: a.ID, Status: "all"})
	if err != nil {
		return failWith(c, "Could not retrieve products", err)
	}
	return c.JSON(fiber.Map{"success": true, "artisan": artisanView(a), "products": products})
}

type artisanRequest struct {
	Name            string            `json:"name" validate:"required,max=200"`
	Email           string            `json:"email" validate:"required,email"`
	Phone           string            `json:"phone" validate:"required,in_phone"`
	CraftType       string            `json:"craft_type" validate:"required"`
	Location        map[string]string `json:"location"`
	Bio             string            `json:"bio"`
	ExperienceYears int               `json:"experience_years" validate:"min=0"`
}

func (h *ArtisanHandler) HandleCreateArtisan(c *fiber.Ctx) error {
	var req artisanRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	a := models.NewArtisan(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)),
		req.Phone, req.CraftType, req.Location, req.Bio, req.ExperienceYears)
	if err := h.artisans.CreateArtisan(a); err != nil {
		h.logger.Warn("artisan registration failed", "email", a.Email, "error", err)
		return failWith(c, "Could not register artisan", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "artisan": artisanView(a)})
}

type artisanPatchRequest struct {
	Name            *string           `json:"name" validate:"omitempty,max=200"`
	Phone           *string           `json:"phone" validate:"omitempty,in_phone"`
	CraftType       *string           `json:"craft_type"`
	Location        map[string]string `json:"location"`
	Bio             *string           `json:"bio"`
	ExperienceYears *int              `json:"experience_years" validate:"omitempty,min=0"`
	Verified        *bool             `json:"verified"`
	Status          *string           `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Rating          *float64          `json:"rating" validate:"omitempty,min=0,max=5"`
}

func (h *ArtisanHandler) HandleUpdateArtisan(c *fiber.Ctx) error {
	var req artisanPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	a, err := h.artisans.UpdateArtisan(c.Params("id"), services.ArtisanPatch{
		Name:            req.Name,
		Phone:           req.Phone,
		CraftType:       req.CraftType,
		Location:        req.Location,
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
		Verified:        req.Verified,
		Status:          req.Status,
		Rating:          req.Rating,
	})
	if err != nil {
		return failWith(c, "Could not update artisan", err)
	}
	return c.JSON(fiber.Map{"success": true, "artisan": artisanView(a)})
}

// HandleUploadProfileImage replaces the artisan's profile picture with the
// multipart "image" field.
func (h *ArtisanHandler) HandleUploadProfileImage(c *fiber.Ctx) error {
	id := c.Params("id")
	a, err := h.artisans.GetArtisan(id)
	if err != nil {
		return failWith(c, "Artisan not found", err)
	}
	previous := a.ProfileImage

	fh, err := c.FormFile("image")
	if err != nil {
		fh = nil
	}
	result := h.media.UploadProfileImage(c.UserContext(), fh, id)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}

	a, err = h.artisans.SetProfileImage(id, result.URL)
	if err != nil {
		return failWith(c, "Could not update artisan", err)
	}
	if previous != "" {
		if err := h.media.DeleteImage(c.UserContext(), previous); err != nil {
			h.logger.Warn("failed to delete previous profile image", "artisan_id", id, "url", previous, "error", err)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "upload": result, "artisan": artisanView(a)})
}
