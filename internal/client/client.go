// Package client talks to the product API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"katalog/internal/apperror"
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds a request when the context carries no deadline.
const DefaultTimeout = 15 * time.Second

// APIError is a non-success envelope returned by the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Message returns the text to show a user for err: the API message when
// there is one, the generic server error otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return apperror.ServerMessage
}

// Client calls the product API rooted at baseURL.
type Client struct {
	baseURL string
	timeout time.Duration
}

// New creates a Client. baseURL is the server root, e.g. http://127.0.0.1:5000.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
}

func (c *Client) productsURL(id string) string {
	if id == "" {
		return c.baseURL + "/api/Products"
	}
	return c.baseURL + "/api/Products/" + url.PathEscape(id)
}

// List fetches every product.
func (c *Client) List(ctx context.Context) ([]models.Product, error) {
	env, err := c.do(ctx, fiber.Get(c.productsURL("")))
	if err != nil {
		return nil, err
	}
	return env.Products, nil
}

// Get fetches one product by id.
func (c *Client) Get(ctx context.Context, id string) (*models.Product, error) {
	env, err := c.do(ctx, fiber.Get(c.productsURL(id)))
	if err != nil {
		return nil, err
	}
	return env.Product, nil
}

// Create submits a new product with its image.
func (c *Client) Create(ctx context.Context, input models.ProductInput, img *models.ImageUpload) (*models.Product, error) {
	fields := map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"status":      input.Status,
		"date":        input.Date,
	}
	body, contentType, err := encodeForm(fields, img)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, fiber.Post(c.productsURL("")).Body(body).ContentType(contentType))
	if err != nil {
		return nil, err
	}
	return env.Product, nil
}

// Update sends the present fields of patch and an optional new image.
func (c *Client) Update(ctx context.Context, id string, patch models.ProductPatch, img *models.ImageUpload) (*models.Product, error) {
	fields := make(map[string]string)
	for key, v := range map[string]*string{
		"title":       patch.Title,
		"description": patch.Description,
		"status":      patch.Status,
		"date":        patch.Date,
	} {
		if v != nil {
			fields[key] = *v
		}
	}
	body, contentType, err := encodeForm(fields, img)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, fiber.Put(c.productsURL(id)).Body(body).ContentType(contentType))
	if err != nil {
		return nil, err
	}
	return env.Product, nil
}

// Delete removes a product and returns the removed record.
func (c *Client) Delete(ctx context.Context, id string) (*models.Product, error) {
	env, err := c.do(ctx, fiber.Delete(c.productsURL(id)))
	if err != nil {
		return nil, err
	}
	return env.Product, nil
}

// Export downloads the catalog workbook.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	agent, err := c.prepare(ctx, fiber.Get(c.productsURL("export")))
	if err != nil {
		return nil, err
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("export products: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return nil, decodeError(status, body)
	}
	return body, nil
}

func (c *Client) prepare(ctx context.Context, agent *fiber.Agent) (*fiber.Agent, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return agent.Timeout(timeout), nil
}

func (c *Client) do(ctx context.Context, agent *fiber.Agent) (*models.Envelope, error) {
	agent, err := c.prepare(ctx, agent)
	if err != nil {
		return nil, err
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("request product api: %w", errors.Join(errs...))
	}

	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Status: status, Message: apperror.ServerMessage}
	}
	if status >= fiber.StatusBadRequest || !env.Success {
		return nil, &APIError{Status: status, Message: env.Message}
	}
	return &env, nil
}

func decodeError(status int, body []byte) error {
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == "" {
		return &APIError{Status: status, Message: apperror.ServerMessage}
	}
	return &APIError{Status: status, Message: env.Message}
}

// encodeForm builds a multipart body. The image part keeps its declared
// MIME type, which the API checks.
func encodeForm(fields map[string]string, img *models.ImageUpload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(img.Filename)))
		h.Set("Content-Type", img.MIMEType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
