package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"katalog/internal/apperror"
	"katalog/internal/imagehost"
	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Messages returned to API callers.
const (
	MsgImageRequired     = "Image is required"
	MsgImageUploadFailed = "Image upload failed"
	MsgProductNotFound   = "Product not found"
)

// DefaultImageFolder is the image host namespace product images live under.
const DefaultImageFolder = "products"

// EventPublisher publishes a serialized event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	host     imagehost.Host
	events   EventPublisher
	folder   string
	validate *validator.Validate
}

// NewProductService creates a new ProductService. events may be nil, in
// which case no product events are published.
func NewProductService(repo repositories.ProductRepository, host imagehost.Host, folder string, events EventPublisher) *ProductService {
	if folder == "" {
		folder = DefaultImageFolder
	}
	return &ProductService{
		repo:     repo,
		host:     host,
		events:   events,
		folder:   folder,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// GetAllProducts retrieves every product. An empty catalog is not an error here.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Server(err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return product, nil
}

// CreateProduct validates input, uploads the image and persists a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput, img *models.ImageUpload) (*models.Product, error) {
	if img == nil {
		return nil, apperror.Validation(MsgImageRequired)
	}

	product := &models.Product{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Date:        input.Date,
	}
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	url, err := s.host.Upload(ctx, s.folder, *img)
	if err != nil {
		return nil, apperror.Upstream(MsgImageUploadFailed, err)
	}
	product.Image = url

	if err := s.repo.Create(ctx, product); err != nil {
		s.imageOrphaned(url, err)
		return nil, apperror.Server(err)
	}

	slog.Info("product created", "id", product.ID, "title", product.Title)
	s.publish(models.ProductEvent{Type: models.EventProductCreated, Product: product})
	return product, nil
}

// UpdateProduct merges the present fields of patch into the stored product
// and, when img is given, replaces its image. The previous remote image is
// left in place.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, img *models.ImageUpload) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if err := rejectBlankFields(patch); err != nil {
		return nil, err
	}
	patch.ApplyTo(product)
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	var previousImage, uploaded string
	if img != nil {
		url, err := s.host.Upload(ctx, s.folder, *img)
		if err != nil {
			return nil, apperror.Upstream(MsgImageUploadFailed, err)
		}
		previousImage, uploaded = product.Image, url
		product.Image = url
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if uploaded != "" {
			s.imageOrphaned(uploaded, err)
		}
		return nil, storeError(err)
	}

	slog.Info("product updated", "id", product.ID, "image_replaced", uploaded != "")
	s.publish(models.ProductEvent{Type: models.EventProductUpdated, Product: product, PreviousImage: previousImage})
	return product, nil
}

// DeleteProduct removes a product and returns the removed record.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("product deleted", "id", product.ID)
	s.publish(models.ProductEvent{Type: models.EventProductDeleted, Product: product})
	return product, nil
}

func (s *ProductService) validateProduct(product *models.Product) error {
	err := s.validate.Struct(product)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Server(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	case "notblank":
		return fmt.Sprintf("%s must not be empty", e.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", e.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// rejectBlankFields refuses fields that are present but empty, which would
// otherwise wipe a required value.
func rejectBlankFields(patch models.ProductPatch) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"description", patch.Description},
		{"status", patch.Status},
		{"date", patch.Date},
	}
	var msgs []string
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			msgs = append(msgs, f.name+" must not be empty")
		}
	}
	if len(msgs) > 0 {
		return apperror.Validation(strings.Join(msgs, "; "))
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return apperror.NotFound(MsgProductNotFound)
	}
	return apperror.Server(err)
}

// imageOrphaned reports an image that was uploaded but never referenced
// because the store write that followed it failed.
func (s *ProductService) imageOrphaned(url string, cause error) {
	slog.Warn("uploaded image orphaned by failed store write", "image", url, "error", cause)
	s.publish(models.ProductEvent{Type: models.EventProductImageOrphaned, OrphanedImage: url})
}

func (s *ProductService) publish(evt models.ProductEvent) {
	if s.events == nil {
		return
	}
	evt.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(evt)
	if err != nil {
		slog.Warn("failed to marshal product event", "type", evt.Type, "error", err)
		return
	}
	if err := s.events.Publish(evt.Type, body); err != nil {
		slog.Warn("failed to publish product event", "type", evt.Type, "error", err)
	}
}
