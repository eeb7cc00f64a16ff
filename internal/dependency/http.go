package dependency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/model"
)

// HTTPHeaders probes an address with a HEAD request, HTTPS first and
// plain HTTP second, and returns the response headers.
type HTTPHeaders struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	schemes   []string
}

// HTTPOption configures HTTPHeaders.
type HTTPOption func(*HTTPHeaders)

// WithHTTPClient replaces the HTTP client.
// The client's redirect policy is left as the caller configured it.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPHeaders) {
		h.client = client
	}
}

// WithHTTPTimeout sets the per request timeout.
// Non-positive values keep the default.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTPHeaders) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithHTTPUserAgent sets the User-Agent header. Empty keeps the default.
func WithHTTPUserAgent(ua string) HTTPOption {
	return func(h *HTTPHeaders) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithHTTPSchemes overrides the schemes tried, in order.
func WithHTTPSchemes(schemes ...string) HTTPOption {
	return func(h *HTTPHeaders) {
		h.schemes = schemes
	}
}

// NewHTTPHeaders creates an HTTP headers dependency.
// Redirects are not followed: the first response is the one described.
func NewHTTPHeaders(opts ...HTTPOption) *HTTPHeaders {
	h := &HTTPHeaders{
		userAgent: config.DefaultUserAgent,
		timeout:   config.DefaultHTTPTimeout,
		schemes:   []string{"https", "http"},
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.client == nil {
		h.client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return h
}

// Key implements Dependency.
func (h *HTTPHeaders) Key() model.DependencyKey {
	return KeyHTTPHeaders
}

// Fetch returns a *model.HTTPResponse from the first scheme that answers
// with a status below 400. When every scheme fails, the errors are joined.
func (h *HTTPHeaders) Fetch(ctx context.Context, address string) (any, error) {
	host := strings.TrimSuffix(address, ".")

	var errs []error
	for _, scheme := range h.schemes {
		resp, err := h.head(ctx, scheme+"://"+host+"/")
		if err == nil {
			return resp, nil
		}
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, errors.Join(errs...)
}

func (h *HTTPHeaders) head(ctx context.Context, url string) (*model.HTTPResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HEAD %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HEAD %s: unexpected status %s", url, resp.Status)
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	return &model.HTTPResponse{
		URL:     url,
		Status:  resp.StatusCode,
		Headers: headers,
	}, nil
}
