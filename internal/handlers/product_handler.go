package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"artisanhub/internal/display"
	"artisanhub/internal/media"
	"artisanhub/internal/models"
	"artisanhub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// ProductHandler handles HTTP requests for product listings and their media.
type ProductHandler struct {
	products *services.ProductService
	artisans *services.ArtisanService
	media    *media.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *services.ProductService, artisans *services.ArtisanService,
	mediaService *media.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		artisans: artisans,
		media:    mediaService,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the product routes. Reads are public; auth guards writes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/low-stock", h.HandleLowStock)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/images", h.HandleListImages)

	productRoutes.Post("/", auth, h.HandleCreateProduct)
	productRoutes.Post("/enhance-description", auth, h.HandleEnhanceDescription)
	productRoutes.Patch("/:id", auth, h.HandleUpdateProduct)
	productRoutes.Put("/:id", auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, h.HandleDeleteProduct)
	productRoutes.Patch("/:id/stock", auth, h.HandleUpdateStock)
	productRoutes.Post("/:id/featured", auth, h.HandleToggleFeatured)
	productRoutes.Post("/:id/images", auth, h.HandleUploadImage)
	productRoutes.Post("/:id/images/enhanced", auth, h.HandleUploadEnhancedImage)
	productRoutes.Delete("/:id/images", auth, h.HandleRemoveImage)
}

func (h *ProductHandler) view(p *models.Product) fiber.Map {
	v := fiber.Map(p.ToRecord())
	v["price_display"] = display.FormatCurrency(p.Price)
	v["dimensions_text"] = p.DimensionsText()
	v["low_stock"] = p.IsLowStock(h.products.LowStockThreshold())
	v["listed_on"] = display.ReadableDate(p.CreatedAt)
	return v
}

func (h *ProductHandler) views(products []models.Product) []fiber.Map {
	out := make([]fiber.Map, 0, len(products))
	for i := range products {
		v := h.view(&products[i])
		v["summary"] = display.TruncateText(products[i].Description, 100)
		out = append(out, v)
	}
	return out
}

// HandleListProducts lists products filtered by the search, category,
// artisan_id, featured and status query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := services.ProductFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		ArtisanID: c.Query("artisan_id"),
		Featured:  cast.ToBool(c.Query("featured")),
		Status:    c.Query("status"),
	}
	products, err := h.products.ListProducts(filter)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		return failWith(c, "Could not retrieve products", err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(products), "products": h.views(products)})
}

func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	products, err := h.products.LowStock()
	if err != nil {
		return failWith(c, "Could not retrieve products", err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(products), "products": h.views(products)})
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	p, err := h.products.GetProduct(c.Params("id"))
	if err != nil {
		return failWith(c, "Product not found", err)
	}
	return c.JSON(fiber.Map{"success": true, "product": h.view(p)})
}

// productRequest is the body of a create request. Numeric fields accept
// numbers or numeric strings.
type productRequest struct {
	ArtisanID          string         `json:"artisan_id" validate:"required"`
	Name               string         `json:"name" validate:"required,max=200"`
	Description        string         `json:"description" validate:"required"`
	Price              any            `json:"price"`
	Category           string         `json:"category" validate:"required"`
	Subcategory        string         `json:"subcategory"`
	Materials          []string       `json:"materials"`
	Dimensions         map[string]any `json:"dimensions"`
	Weight             any            `json:"weight"`
	StockQuantity      any            `json:"stock_quantity"`
	Images             []string       `json:"images"`
	Tags               []string       `json:"tags"`
	EnhanceDescription bool           `json:"enhance_description"`
}

func (r productRequest) build() (*models.Product, error) {
	if r.Price == nil {
		return nil, fmt.Errorf("price is required: %w", services.ErrInvalidInput)
	}
	price, err := cast.ToFloat64E(r.Price)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("price must be a non-negative number: %w", services.ErrInvalidInput)
	}

	opts := []models.ProductOption{
		models.WithSubcategory(r.Subcategory),
		models.WithMaterials(r.Materials...),
		models.WithImages(r.Images...),
	}
	if r.Dimensions != nil {
		opts = append(opts, models.WithDimensions(r.Dimensions))
	}
	if r.Weight != nil {
		w, err := cast.ToFloat64E(r.Weight)
		if err != nil {
			return nil, fmt.Errorf("weight must be a number: %w", services.ErrInvalidInput)
		}
		opts = append(opts, models.WithWeight(w))
	}
	if r.StockQuantity != nil {
		q, err := cast.ToIntE(r.StockQuantity)
		if err != nil {
			return nil, fmt.Errorf("stock_quantity must be an integer: %w", services.ErrInvalidInput)
		}
		opts = append(opts, models.WithStock(q))
	}

	p := models.NewProduct(r.ArtisanID, strings.TrimSpace(r.Name), strings.TrimSpace(r.Description), price, r.Category, opts...)
	if r.Tags != nil {
		p.Tags = r.Tags
	}
	return p, nil
}

// HandleCreateProduct creates a listing, optionally rewriting its description.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	p, err := req.build()
	if err != nil {
		return failWith(c, "Invalid product", err)
	}

	if req.EnhanceDescription {
		artisan, err := h.artisans.GetArtisan(p.ArtisanID)
		if err != nil {
			return failWith(c, "Could not create product", err)
		}
		p.Description = h.media.EnhanceDescription(c.UserContext(), p.Description, p.Name, artisan.CraftType, p.Materials)
	}

	if err := h.products.CreateProduct(p); err != nil {
		h.logger.Warn("create product failed", "artisan_id", p.ArtisanID, "error", err)
		return failWith(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": h.view(p)})
}

// parseProductPatch reads the recognised keys of a loosely typed body.
func parseProductPatch(body map[string]any) (services.ProductPatch, error) {
	var patch services.ProductPatch
	invalid := func(field string) error {
		return fmt.Errorf("invalid value for %s: %w", field, services.ErrInvalidInput)
	}

	for _, field := range []struct {
		key string
		dst **string
	}{
		{"name", &patch.Name},
		{"description", &patch.Description},
		{"category", &patch.Category},
		{"subcategory", &patch.Subcategory},
	} {
		if v, ok := body[field.key]; ok {
			s, err := cast.ToStringE(v)
			if err != nil {
				return patch, invalid(field.key)
			}
			*field.dst = &s
		}
	}
	if v, ok := body["price"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return patch, invalid("price")
		}
		patch.Price = &f
	}
	if v, ok := body["weight"]; ok {
		if v == nil {
			patch.ClearWeight = true
		} else {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return patch, invalid("weight")
			}
			patch.Weight = &f
		}
	}
	if v, ok := body["stock_quantity"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return patch, invalid("stock_quantity")
		}
		patch.StockQuantity = &n
	}
	if v, ok := body["status"]; ok {
		st, err := models.ParseProductStatus(cast.ToString(v))
		if err != nil {
			return patch, fmt.Errorf("%v: %w", err, services.ErrInvalidInput)
		}
		patch.Status = &st
	}
	if v, ok := body["featured"]; ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return patch, invalid("featured")
		}
		patch.Featured = &b
	}
	if v, ok := body["materials"]; ok {
		m, err := cast.ToStringSliceE(v)
		if err != nil {
			return patch, invalid("materials")
		}
		patch.Materials = append([]string{}, m...)
	}
	if v, ok := body["tags"]; ok {
		t, err := cast.ToStringSliceE(v)
		if err != nil {
			return patch, invalid("tags")
		}
		patch.Tags = append([]string{}, t...)
	}
	if v, ok := body["dimensions"]; ok && v != nil {
		d, err := cast.ToStringMapE(v)
		if err != nil {
			return patch, invalid("dimensions")
		}
		patch.Dimensions = d
	}
	return patch, nil
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	patch, err := parseProductPatch(body)
	if err != nil {
		return failWith(c, "Invalid product update", err)
	}
	p, err := h.products.UpdateProduct(c.Params("id"), patch)
	if err != nil {
		return failWith(c, "Could not update product", err)
	}
	return c.JSON(fiber.Map{"success": true, "product": h.view(p)})
}

func (h *ProductHandler) HandleUpdateStock(c *fiber.Ctx) error {
	var body struct {
		StockQuantity any `json:"stock_quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	q, err := cast.ToIntE(body.StockQuantity)
	if body.StockQuantity == nil || err != nil {
		return fail(c, fiber.StatusBadRequest, "stock_quantity must be an integer", err)
	}
	p, err := h.products.UpdateStock(c.Params("id"), q)
	if err != nil {
		return failWith(c, "Could not update stock", err)
	}
	return c.JSON(fiber.Map{"success": true, "product": h.view(p)})
}

func (h *ProductHandler) HandleToggleFeatured(c *fiber.Ctx) error {
	p, err := h.products.ToggleFeatured(c.Params("id"))
	if err != nil {
		return failWith(c, "Could not update product", err)
	}
	return c.JSON(fiber.Map{"success": true, "featured": p.Featured})
}

// HandleDeleteProduct removes a product and, best effort, its stored images.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := h.products.GetProduct(id)
	if err != nil {
		return failWith(c, "Product not found", err)
	}
	if err := h.products.DeleteProduct(id); err != nil {
		return failWith(c, "Could not delete product", err)
	}
	for _, url := range p.Images {
		if err := h.media.DeleteImage(c.UserContext(), url); err != nil {
			h.logger.Warn("failed to delete product image", "product_id", id, "url", url, "error", err)
		}
	}
	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("Product %s deleted successfully", id)})
}

// HandleUploadImage stores the multipart "image" field on local disk and
// attaches it to the product.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	return h.attachImage(c, h.media.SaveProductImage)
}

// HandleUploadEnhancedImage runs the full enhancement and stores the image in
// the resolved backend, cloud storage when it is available.
func (h *ProductHandler) HandleUploadEnhancedImage(c *fiber.Ctx) error {
	return h.attachImage(c, h.media.UploadProductImage)
}

type imageUploader func(ctx context.Context, fh *multipart.FileHeader, productID string) media.UploadResult

func (h *ProductHandler) attachImage(c *fiber.Ctx, upload imageUploader) error {
	id := c.Params("id")
	if _, err := h.products.GetProduct(id); err != nil {
		return failWith(c, "Product not found", err)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		h.logger.Debug("no image in upload", "product_id", id, "error", err)
		fh = nil
	}
	result := upload(c.UserContext(), fh, id)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}

	p, err := h.products.AddImage(id, result.URL)
	if err != nil {
		return failWith(c, "Could not attach image", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "upload": result, "product": h.view(p)})
}

func (h *ProductHandler) HandleRemoveImage(c *fiber.Ctx) error {
	var body struct {
		URL string `json:"url" validate:"required"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(body); err != nil {
		return validationFailed(c, err)
	}

	p, removed, err := h.products.RemoveImage(c.Params("id"), body.URL)
	if err != nil {
		return failWith(c, "Could not remove image", err)
	}
	if !removed {
		return fail(c, fiber.StatusNotFound, "Image is not attached to this product", nil)
	}
	if err := h.media.DeleteImage(c.UserContext(), body.URL); err != nil {
		h.logger.Warn("failed to delete image file", "product_id", p.ID, "url", body.URL, "error", err)
	}
	return c.JSON(fiber.Map{"success": true, "product": h.view(p)})
}

func (h *ProductHandler) HandleListImages(c *fiber.Ctx) error {
	urls, err := h.media.ListProductImages(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Could not list images", err)
	}
	return c.JSON(fiber.Map{"success": true, "images": urls})
}

type enhanceRequest struct {
	Description string   `json:"description" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	CraftType   string   `json:"craft_type" validate:"required"`
	Materials   []string `json:"materials"`
}

// HandleEnhanceDescription returns rewritten copy without storing it.
func (h *ProductHandler) HandleEnhanceDescription(c *fiber.Ctx) error {
	var req enhanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	text := h.media.EnhanceDescription(c.UserContext(), req.Description, req.Name, req.CraftType, req.Materials)
	return c.JSON(fiber.Map{
		"success":     true,
		"description": text,
		"ai_enhanced": h.media.AIEnabled(),
	})
}
