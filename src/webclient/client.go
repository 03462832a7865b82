package webclient

import (
	"net/http"
	"time"
)

// NewDefault returns an HTTP client with sane timeouts for indexer calls.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
