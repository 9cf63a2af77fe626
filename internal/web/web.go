// Package web serves the browser pages of the catalog. Every read and write
// goes through the product API; the store is never touched directly.
package web

import (
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"katalog/internal/apperror"
	"katalog/internal/catalogview"
	"katalog/internal/client"
	"katalog/internal/export"
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layout = "layout"

// ProductAPI is the subset of the API client the pages use.
type ProductAPI interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput, img *models.ImageUpload) (*models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch, img *models.ImageUpload) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
	Export(ctx context.Context) ([]byte, error)
}

var notices = map[string]string{
	"created": "Product created successfully",
	"updated": "Product updated successfully",
	"deleted": "Product deleted successfully",
}

// NewEngine returns the template engine for the embedded pages.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("statusLabel", func(status string) string {
		if status == "" {
			return ""
		}
		return strings.ToUpper(status[:1]) + status[1:]
	})
	return engine
}

// Handler renders the catalog pages.
type Handler struct {
	api      ProductAPI
	pageSize int
}

// NewHandler creates a Handler listing pageSize products per page.
func NewHandler(api ProductAPI, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = catalogview.DefaultPageSize
	}
	return &Handler{api: api, pageSize: pageSize}
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleDashboard)
	router.Get("/products", h.HandleList)
	router.Post("/products", h.HandleCreate)
	router.Get("/products/new", h.HandleNew)
	router.Get("/products/export", h.HandleExport)
	router.Get("/products/:id/edit", h.HandleEdit)
	router.Post("/products/:id", h.HandleUpdate)
	router.Post("/products/:id/delete", h.HandleDelete)
}

// HandleDashboard shows the status counters and the most recent products.
func (h *Handler) HandleDashboard(c *fiber.Ctx) error {
	data := fiber.Map{"Title": "Dashboard"}
	products, err := h.api.List(c.UserContext())
	if err != nil {
		h.logFailure(c, err)
		data["Error"] = client.Message(err)
	}
	data["Stats"] = catalogview.Count(products)
	data["Recent"] = catalogview.Recent(products, 2)
	return c.Render("dashboard", data, layout)
}

// HandleList shows one filtered page of the catalog. With ?confirm=<id> the
// delete confirmation is shown over the list.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return h.renderList(c, fiber.StatusOK, "")
}

func (h *Handler) renderList(c *fiber.Ctx, status int, failure string) error {
	criteria := catalogview.Criteria{
		Status:    c.Query("status"),
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
	}
	data := fiber.Map{
		"Title":    "Products",
		"Criteria": criteria,
		"Notice":   notices[c.Query("notice")],
	}

	products, err := h.api.List(c.UserContext())
	if err != nil {
		h.logFailure(c, err)
		failure = client.Message(err)
	}
	if failure != "" {
		data["Error"] = failure
	}

	page := catalogview.Build(products, criteria, c.QueryInt("page", 1), h.pageSize)
	data["Page"] = page
	current := listURL(criteria, page.Number)
	data["PrevURL"] = listURL(criteria, page.PrevNumber())
	data["NextURL"] = listURL(criteria, page.NextNumber())
	data["CancelURL"] = current
	if strings.Contains(current, "?") {
		data["ConfirmURL"] = current + "&confirm="
	} else {
		data["ConfirmURL"] = current + "?confirm="
	}

	if id := c.Query("confirm"); id != "" {
		for i := range products {
			if products[i].ID == id {
				data["Confirm"] = products[i]
				break
			}
		}
	}
	return c.Status(status).Render("list", data, layout)
}

// HandleNew shows the empty create form.
func (h *Handler) HandleNew(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, createForm(models.ProductInput{Status: models.StatusActive}))
}

// HandleCreate submits the create form to the API.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	input := models.ProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Status:      c.FormValue("status"),
		Date:        c.FormValue("date"),
	}
	form := createForm(input)

	img, err := formImage(c)
	if err != nil {
		form["Error"] = apperror.PublicMessage(err)
		return h.renderForm(c, fiber.StatusBadRequest, form)
	}

	if _, err := h.api.Create(c.UserContext(), input, img); err != nil {
		h.logFailure(c, err)
		form["Error"] = client.Message(err)
		return h.renderForm(c, statusOf(err), form)
	}
	return c.Redirect("/products?notice=created", fiber.StatusSeeOther)
}

// HandleEdit re-fetches the product by id and shows the edit form.
func (h *Handler) HandleEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.api.Get(c.UserContext(), id)
	if err != nil {
		h.logFailure(c, err)
		return h.renderList(c, statusOf(err), client.Message(err))
	}
	return h.renderForm(c, fiber.StatusOK, editForm(id, models.ProductInput{
		Title:       product.Title,
		Description: product.Description,
		Status:      product.Status,
		Date:        product.Date,
	}, product.Image))
}

// HandleUpdate submits every form field and an optional new image.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	input := models.ProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Status:      c.FormValue("status"),
		Date:        c.FormValue("date"),
	}
	form := editForm(id, input, c.FormValue("current_image"))

	img, err := formImage(c)
	if err != nil {
		form["Error"] = apperror.PublicMessage(err)
		return h.renderForm(c, fiber.StatusBadRequest, form)
	}

	patch := models.ProductPatch{
		Title:       &input.Title,
		Description: &input.Description,
		Status:      &input.Status,
		Date:        &input.Date,
	}
	if _, err := h.api.Update(c.UserContext(), id, patch, img); err != nil {
		h.logFailure(c, err)
		form["Error"] = client.Message(err)
		return h.renderForm(c, statusOf(err), form)
	}
	return c.Redirect("/products?notice=updated", fiber.StatusSeeOther)
}

// HandleDelete deletes a product once the user has confirmed.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if _, err := h.api.Delete(c.UserContext(), c.Params("id")); err != nil {
		h.logFailure(c, err)
		return h.renderList(c, statusOf(err), client.Message(err))
	}
	return c.Redirect("/products?notice=deleted", fiber.StatusSeeOther)
}

// HandleExport proxies the spreadsheet export.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	data, err := h.api.Export(c.UserContext())
	if err != nil {
		h.logFailure(c, err)
		return h.renderList(c, statusOf(err), client.Message(err))
	}
	c.Attachment("products.xlsx")
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(data)
}

func (h *Handler) renderForm(c *fiber.Ctx, status int, form fiber.Map) error {
	return c.Status(status).Render("form", form, layout)
}

func (h *Handler) logFailure(c *fiber.Ctx, err error) {
	slog.Warn("product api call failed", "path", c.Path(), "error", err)
}

func createForm(values models.ProductInput) fiber.Map {
	return fiber.Map{
		"Title":         "Add Product",
		"Submit":        "Create Product",
		"Action":        "/products",
		"Values":        values,
		"ImageRequired": true,
	}
}

func editForm(id string, values models.ProductInput, currentImage string) fiber.Map {
	return fiber.Map{
		"Title":        "Edit Product",
		"Submit":       "Save Changes",
		"Action":       "/products/" + url.PathEscape(id),
		"Values":       values,
		"CurrentImage": currentImage,
	}
}

// formImage reads the optional image part of a browser form. Validation is
// left to the API.
func formImage(c *fiber.Ctx) (*models.ImageUpload, error) {
	if !strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid form submission")
	}
	files := form.File["image"]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Validation("Could not read the selected image")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.Validation("Could not read the selected image")
	}
	return &models.ImageUpload{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get(fiber.HeaderContentType),
		Data:     data,
	}, nil
}

func statusOf(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= fiber.StatusBadRequest {
		return apiErr.Status
	}
	return fiber.StatusBadGateway
}

// listURL links to page of the list with the current filters kept.
func listURL(c catalogview.Criteria, page int) string {
	q := url.Values{}
	if c.Status != "" {
		q.Set("status", c.Status)
	}
	if c.StartDate != "" {
		q.Set("start", c.StartDate)
	}
	if c.EndDate != "" {
		q.Set("end", c.EndDate)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/products"
	}
	return "/products?" + q.Encode()
}
