package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, 180*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 120*time.Second, tr.ResponseHeaderTimeout)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed":
			w.Header().Set("Content-Type", "image/png; charset=binary")
			_, _ = w.Write(pngMagic)
		case "/untyped":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(pngMagic)
		case "/big":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.Error(w, "expired", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	client := srv.Client()
	ctx := context.Background()

	t.Run("declared type", func(t *testing.T) {
		var d Downloaded
		d, err := Download(ctx, client, srv.URL+"/typed", 0)
		require.NoError(t, err)
		assert.Equal(t, "image/png", d.MimeType)
		assert.Equal(t, pngMagic, d.Bytes)
	})

	t.Run("sniffed type", func(t *testing.T) {
		d, err := Download(ctx, client, srv.URL+"/untyped", 0)
		require.NoError(t, err)
		assert.Equal(t, "image/png", d.MimeType)
	})

	t.Run("error status", func(t *testing.T) {
		_, err := Download(ctx, client, srv.URL+"/gone", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("size limit", func(t *testing.T) {
		_, err := Download(ctx, client, srv.URL+"/big", 16)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := Download(ctx, client, " ", 0)
		assert.Error(t, err)
	})
}

func TestDetectMimeTypeFallsBackToJPEG(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectMimeType("", nil))
	assert.Equal(t, "image/webp", DetectMimeType("image/webp", nil))
}
