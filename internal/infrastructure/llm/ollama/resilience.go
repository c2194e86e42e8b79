package ollama

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx answer from the Ollama API.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

var ollamaRules = resilience.Rules{
	Transient: func(err error) bool {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			return isRetryableHTTPStatus(statusErr.StatusCode)
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	},
	// A 4xx means the model or request is wrong; the server itself is fine.
	Benign: func(err error) bool {
		var statusErr *HTTPStatusError
		return errors.As(err, &statusErr) && !isRetryableHTTPStatus(statusErr.StatusCode)
	},
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
