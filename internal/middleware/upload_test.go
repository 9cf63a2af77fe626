package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadApp(reached *int) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler, BodyLimit: 8 << 20})
	app.Post("/upload", middleware.SingleImage(middleware.ImageField, middleware.MaxImageSize), func(c *fiber.Ctx) error {
		*reached++
		img := middleware.UploadedImage(c)
		if img == nil {
			return c.JSON(fiber.Map{"image": false})
		}
		return c.JSON(fiber.Map{"image": true, "filename": img.Filename, "mime": img.MIMEType, "size": len(img.Data)})
	})
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.Envelope {
	t.Helper()
	defer resp.Body.Close()
	var env models.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestSingleImageAcceptsPNGAndJPEG(t *testing.T) {
	cases := []testutil.File{
		{Field: "image", Filename: "photo.png", ContentType: "image/png", Data: testutil.PNG(3, 3)},
		{Field: "image", Filename: "PHOTO.JPG", ContentType: "image/jpeg", Data: testutil.JPEG(3, 3)},
		{Field: "image", Filename: "photo.jpeg", ContentType: "image/jpeg", Data: testutil.JPEG(3, 3)},
	}
	for _, f := range cases {
		t.Run(f.Filename, func(t *testing.T) {
			reached := 0
			app := newUploadApp(&reached)
			body, ct := testutil.MultipartBody(map[string]string{"title": "x"}, f)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, 1, reached)

			var got map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, true, got["image"])
			assert.Equal(t, f.Filename, got["filename"])
			assert.EqualValues(t, len(f.Data), got["size"])
		})
	}
}

func TestSingleImageRejections(t *testing.T) {
	cases := []struct {
		name    string
		files   []testutil.File
		message string
	}{
		{
			name:    "gif extension and type",
			files:   []testutil.File{{Field: "image", Filename: "anim.gif", ContentType: "image/gif", Data: []byte("GIF89a....")}},
			message: middleware.MsgWrongType,
		},
		{
			name:    "png bytes with gif extension",
			files:   []testutil.File{{Field: "image", Filename: "photo.gif", ContentType: "image/png", Data: testutil.PNG(2, 2)}},
			message: middleware.MsgWrongType,
		},
		{
			name:    "declared png but text content",
			files:   []testutil.File{{Field: "image", Filename: "photo.png", ContentType: "image/png", Data: []byte("just some text")}},
			message: middleware.MsgWrongType,
		},
		{
			name:    "three mebibytes",
			files:   []testutil.File{{Field: "image", Filename: "big.png", ContentType: "image/png", Data: testutil.PaddedPNG(3 << 20)}},
			message: middleware.MsgTooLarge,
		},
		{
			name:    "two images",
			files:   []testutil.File{testutil.PNGFile("a.png"), testutil.PNGFile("b.png")},
			message: middleware.MsgTooManyFiles,
		},
		{
			name:    "file under another field",
			files:   []testutil.File{{Field: "avatar", Filename: "a.png", ContentType: "image/png", Data: testutil.PNG(2, 2)}},
			message: middleware.MsgUnexpectedKey,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := 0
			app := newUploadApp(&reached)
			body, ct := testutil.MultipartBody(nil, tc.files...)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
			assert.Zero(t, reached, "handler must not run for rejected uploads")
		})
	}
}

func TestSingleImageWithoutFilePassesThrough(t *testing.T) {
	reached := 0
	app := newUploadApp(&reached)

	body, ct := testutil.MultipartBody(map[string]string{"status": "inactive"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"status":"inactive"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 2, reached)
}
