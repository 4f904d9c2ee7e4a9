package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned for responses that cannot be previewed.
var (
	ErrScheme   = errors.New("only http and https URLs can be fetched")
	ErrNotImage = errors.New("response is not an image")
	ErrTooLarge = errors.New("image exceeds size limit")
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Message)
}

// checkResponse maps a non-2xx response to a StatusError.
func checkResponse(rawURL string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &StatusError{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Message:    statusMessage(resp.StatusCode),
	}
}

// statusMessage maps HTTP status codes to human-readable error messages.
func statusMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "image not found"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusGone:
		return "image no longer available"
	case http.StatusTooManyRequests:
		return "rate limited, try again later"
	default:
		return fmt.Sprintf("unexpected response (HTTP %d)", code)
	}
}
