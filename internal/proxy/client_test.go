package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := New(Config{ScreenshotURL: srv.URL})
	data, mime, err := c.Screenshot(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{TTSURL: srv.URL})
	_, _, err := c.TTS(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrService)

	// Unconfigured services fail the same way.
	_, _, err = c.Screenshot(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrService)
	_, err = c.ImageSearch(context.Background(), "cats", 3)
	assert.ErrorIs(t, err, ErrService)
}

func TestTimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{TTSURL: srv.URL, Timeout: 20 * time.Millisecond})
	start := time.Now()
	_, _, err := c.TTS(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrService)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestImageSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg " + r.URL.Path))
	})
	var srv *httptest.Server
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"url":"` + srv.URL + `/img/1"},{"url":"` + srv.URL + `/img/2"},{"url":"` + srv.URL + `/img/3"}]`))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{ImageSearchURL: srv.URL + "/search"})
	images, err := c.ImageSearch(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Len(t, images, 2, "count caps the results")
	assert.Equal(t, "image/jpeg", images[0].MimeType)
}
