package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"katalog/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds the Cloudinary credentials. URL takes precedence
// over the individual fields when set.
type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
}

// CloudinaryHost uploads images to Cloudinary.
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryHost creates a Cloudinary client from cfg.
func NewCloudinaryHost(cfg CloudinaryConfig) (*CloudinaryHost, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	default:
		return nil, errors.New("cloudinary credentials are not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &CloudinaryHost{cld: cld}, nil
}

// Upload streams the image bytes to Cloudinary and returns its secure URL.
func (h *CloudinaryHost) Upload(ctx context.Context, folder string, img models.ImageUpload) (string, error) {
	res, err := h.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload of %s: %w", img.Filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload of %s: %s", img.Filename, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload of %s returned no URL", img.Filename)
	}
	return res.SecureURL, nil
}
