package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"katalog/internal/apperror"
	"katalog/internal/export"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Messages returned by the product endpoints.
const (
	MsgNoProducts     = "no products found"
	MsgProductDeleted = "Product deleted successfully"
	MsgInvalidBody    = "Invalid request body"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes under router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	upload := middleware.SingleImage(middleware.ImageField, middleware.MaxImageSize)

	productRoutes := router.Group("/Products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", upload, h.HandleCreateProduct)
	productRoutes.Get("/export", h.HandleExportProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", upload, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns the whole catalog. An empty catalog is reported
// as a 400 so existing clients keep their error path.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.Envelope{Success: false, Message: MsgNoProducts})
	}
	return c.JSON(models.Envelope{Success: true, Products: products})
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(models.Envelope{Success: true, Product: product})
}

// HandleCreateProduct creates a product from a multipart form carrying the
// scalar fields and a required image.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return apperror.Validation(MsgInvalidBody)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input, middleware.UploadedImage(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.Envelope{Success: true, Product: product})
}

// HandleUpdateProduct applies the fields present in the request body and an
// optional replacement image.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	patch, err := parsePatch(c)
	if err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch, middleware.UploadedImage(c))
	if err != nil {
		return err
	}
	return c.JSON(models.Envelope{Success: true, Product: product})
}

// HandleDeleteProduct removes a product and echoes the removed record.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(models.Envelope{Success: true, Message: MsgProductDeleted, Product: product})
}

// HandleExportProducts streams the catalog as an .xlsx attachment.
func (h *ProductHandler) HandleExportProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, products); err != nil {
		return apperror.Server(fmt.Errorf("export products: %w", err))
	}

	c.Attachment(export.FileName(time.Now()))
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(buf.Bytes())
}

// parsePatch collects the scalar fields actually present in the body.
// Multipart, urlencoded and JSON bodies are accepted.
func parsePatch(c *fiber.Ctx) (models.ProductPatch, error) {
	var patch models.ProductPatch
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return patch, apperror.Validation(MsgInvalidBody)
		}
		lookup := func(key string) *string {
			if vals, ok := form.Value[key]; ok && len(vals) > 0 {
				v := vals[0]
				return &v
			}
			return nil
		}
		fillPatch(&patch, lookup)

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		args := c.Request().PostArgs()
		lookup := func(key string) *string {
			if !args.Has(key) {
				return nil
			}
			v := string(args.Peek(key))
			return &v
		}
		fillPatch(&patch, lookup)

	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		if len(c.Body()) == 0 {
			return patch, nil
		}
		if err := json.Unmarshal(c.Body(), &patch); err != nil {
			return patch, apperror.Validation(MsgInvalidBody)
		}
	}
	return patch, nil
}

func fillPatch(patch *models.ProductPatch, lookup func(string) *string) {
	patch.Title = lookup("title")
	patch.Description = lookup("description")
	patch.Status = lookup("status")
	patch.Date = lookup("date")
}
