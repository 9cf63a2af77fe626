// Package testutil holds fixtures shared by the package tests: multipart
// bodies, generated images and a recording image host.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"sort"
	"sync"

	"katalog/internal/models"
)

// File is a file part of a multipart body.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// MultipartBody encodes fields and files as multipart/form-data and returns
// the body together with its Content-Type header value.
func MultipartBody(fields map[string]string, files ...File) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_ = w.WriteField(k, fields[k])
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			panic(err)
		}
		_, _ = part.Write(f.Data)
	}
	_ = w.Close()
	return body, w.FormDataContentType()
}

// PNG returns a w×h encoded PNG image.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// JPEG returns a w×h encoded JPEG image.
func JPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

// PNGFile returns a valid image part for the "image" field.
func PNGFile(name string) File {
	return File{Field: "image", Filename: name, ContentType: "image/png", Data: PNG(4, 4)}
}

// PaddedPNG returns a PNG whose payload is padded to size bytes. The
// signature still sniffs as PNG.
func PaddedPNG(size int) []byte {
	data := PNG(2, 2)
	if len(data) >= size {
		return data
	}
	return append(data, make([]byte, size-len(data))...)
}

// ErrHostDown is returned by a failing RecordingHost.
var ErrHostDown = errors.New("image host unavailable")

// RecordingHost is an in-memory image host that records every upload.
type RecordingHost struct {
	mu      sync.Mutex
	Fail    bool
	uploads []models.ImageUpload
	folders []string
}

// Upload records the call and returns a deterministic URL.
func (h *RecordingHost) Upload(ctx context.Context, folder string, img models.ImageUpload) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploads = append(h.uploads, img)
	h.folders = append(h.folders, folder)
	if h.Fail {
		return "", ErrHostDown
	}
	return fmt.Sprintf("https://cdn.test/%s/%d-%s", folder, len(h.uploads), img.Filename), nil
}

// Calls returns the number of uploads attempted.
func (h *RecordingHost) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.uploads)
}

// Folders returns the folders passed to Upload.
func (h *RecordingHost) Folders() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.folders...)
}
