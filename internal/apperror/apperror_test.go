package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"katalog/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.Validation("Image is required"), http.StatusBadRequest},
		{"not found", apperror.NotFound("Product not found"), http.StatusNotFound},
		{"upstream", apperror.Upstream("Image upload failed", errors.New("timeout")), http.StatusInternalServerError},
		{"server", apperror.Server(errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("driver exploded"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("creating product: %w", apperror.Validation("bad")), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperror.StatusCode(tc.err))
		})
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "Server error", apperror.PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "Server error", apperror.PublicMessage(apperror.Server(errors.New("pq: connection refused"))))
	assert.Equal(t, "Image upload failed", apperror.PublicMessage(apperror.Upstream("Image upload failed", errors.New("401 from host"))))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := apperror.Upstream("Image upload failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.False(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "UpstreamError", apperror.KindOf(err).String())
}
