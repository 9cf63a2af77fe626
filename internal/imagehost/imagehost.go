// Package imagehost uploads product images to the external media host and
// returns the public URL they are served from.
package imagehost

import (
	"context"

	"katalog/internal/models"
)

// Host stores an uploaded image under folder and returns its public URL.
type Host interface {
	Upload(ctx context.Context, folder string, img models.ImageUpload) (string, error)
}
