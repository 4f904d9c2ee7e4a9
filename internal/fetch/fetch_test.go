package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newTestClient(maxBytes int64) *Client {
	return New(Options{
		UserAgent: "tungsten-cli/test",
		BaseDelay: time.Millisecond,
		MaxBytes:  maxBytes,
	})
}

func imageHandler(ct string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ct)
		_, _ = w.Write(body)
	}
}

func TestImage_Success(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		imageHandler("image/png", pngMagic)(w, r)
	}))
	defer srv.Close()

	data, err := newTestClient(0).Image(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)

	assert.Equal(t, pngMagic, data)
	assert.Equal(t, "tungsten-cli/test", gotUA)
	assert.Equal(t, "image/*", gotAccept)
}

func TestImage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		max     int64
		wantErr error
	}{
		{"not an image", imageHandler("text/html; charset=utf-8", []byte("<p>")), 0, ErrNotImage},
		{"too large", imageHandler("image/png", []byte(strings.Repeat("x", 64))), 16, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(tt.max).Image(context.Background(), srv.URL)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestImage_Scheme(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "ftp://host/x.png"} {
		_, err := newTestClient(0).Image(context.Background(), u)
		require.ErrorIs(t, err, ErrScheme, u)
	}
}

func TestImage_StatusError(t *testing.T) {
	tests := []struct {
		code    int
		wantMsg string
	}{
		{404, "image not found"},
		{403, "access denied"},
		{410, "image no longer available"},
		{429, "rate limited, try again later"},
		{500, "unexpected response (HTTP 500)"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			_, err := newTestClient(0).Image(context.Background(), srv.URL)
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Contains(t, err.Error(), srv.URL)
		})
	}
}

// --- Retry transport tests ---

func TestRetryTransport_RetryOn5xx(t *testing.T) {
	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		imageHandler("image/png", pngMagic)(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Image(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(3), callCount.Load())
}

func TestRetryTransport_NoRetryOn4xx(t *testing.T) {
	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Image(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestRetryTransport_MaxRetries(t *testing.T) {
	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Image(context.Background(), srv.URL)
	require.Error(t, err)
	// initial + default retries
	assert.Equal(t, int32(defaultRetries+1), callCount.Load())
}

func TestRetryTransport_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{BaseDelay: 500 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Image(ctx, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{301, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
		{504, true},
		{505, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldRetry(tt.code), "status %d", tt.code)
	}
}

func TestLoggingTransport_WrapsBase(t *testing.T) {
	srv := httptest.NewServer(imageHandler("image/gif", []byte("GIF89a")))
	defer srv.Close()

	c := New(Options{Verbose: true, BaseDelay: time.Millisecond})
	_, ok := c.http.Transport.(*loggingTransport)
	require.True(t, ok)

	data, err := c.Image(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
}

func TestWithClient_RoundTrip(t *testing.T) {
	c := New(Options{})
	ctx := WithClient(context.Background(), c)

	assert.Same(t, c, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
