package middleware

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"katalog/internal/apperror"
	"katalog/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

const (
	// ImageField is the multipart field carrying the product image.
	ImageField = "image"
	// MaxImageSize is the largest accepted image, 2 MiB.
	MaxImageSize int64 = 2 << 20

	localsImageKey = "image"
)

// Messages returned for rejected uploads.
const (
	MsgWrongType     = "Only .jpg, .jpeg, and .png files are allowed!"
	MsgTooLarge      = "File too large, maximum size is 2 MiB"
	MsgTooManyFiles  = "Only one image file is allowed"
	MsgUnexpectedKey = "Unexpected file field"
)

var (
	allowedMIMETypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
	}
	allowedExtensions = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
)

// SingleImage validates at most one image file under field and buffers it in
// memory. Violations fail the request with a validation error before any
// handler runs. Requests that are not multipart pass through.
func SingleImage(field string, maxSize int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentType := strings.ToLower(string(c.Request().Header.ContentType()))
		if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			return apperror.Validation("Invalid multipart form")
		}

		for key, files := range form.File {
			if key != field && len(files) > 0 {
				return apperror.Validation(MsgUnexpectedKey)
			}
		}

		files := form.File[field]
		switch len(files) {
		case 0:
			return c.Next()
		case 1:
		default:
			return apperror.Validation(MsgTooManyFiles)
		}

		fh := files[0]
		mimeType := strings.ToLower(fh.Header.Get(fiber.HeaderContentType))
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedMIMETypes[mimeType] || !allowedExtensions[ext] {
			return apperror.Validation(MsgWrongType)
		}
		if fh.Size > maxSize {
			return apperror.Validation(MsgTooLarge)
		}

		f, err := fh.Open()
		if err != nil {
			return apperror.Server(fmt.Errorf("opening uploaded file: %w", err))
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
		if err != nil {
			return apperror.Server(fmt.Errorf("reading uploaded file: %w", err))
		}
		if int64(len(data)) > maxSize {
			return apperror.Validation(MsgTooLarge)
		}

		detected := mimetype.Detect(data)
		if !detected.Is("image/jpeg") && !detected.Is("image/png") {
			return apperror.Validation(MsgWrongType)
		}

		c.Locals(localsImageKey, &models.ImageUpload{
			Filename: fh.Filename,
			MIMEType: mimeType,
			Data:     data,
		})
		return c.Next()
	}
}

// UploadedImage returns the image validated by SingleImage, or nil.
func UploadedImage(c *fiber.Ctx) *models.ImageUpload {
	img, _ := c.Locals(localsImageKey).(*models.ImageUpload)
	return img
}
