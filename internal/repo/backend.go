package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/codespire/rca-console/internal/cache"
	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/utils"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("playbook not found")

// ErrUpstream marks any failed exchange with the backend.
var ErrUpstream = errors.New("backend request failed")

// BackendClient wraps the playbook backend HTTP API.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Provider
	catalogTTL time.Duration
}

// Option customises a BackendClient.
type Option func(*BackendClient)

// WithCache routes catalog reads through the provider for ttl.
func WithCache(provider cache.Provider, ttl time.Duration) Option {
	return func(c *BackendClient) {
		if provider != nil {
			c.cache = provider
		}
		if ttl > 0 {
			c.catalogTTL = ttl
		}
	}
}

// WithRateLimit bounds outbound requests per second. Zero or negative disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *BackendClient) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BackendClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewBackendClient constructs a client targeting the configured backend.
func NewBackendClient(baseURL string, timeout time.Duration, opts ...Option) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.NoopProvider{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolvePath joins an already escaped path onto the base URL.
func (c *BackendClient) resolvePath(p string) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	escaped := path.Join(u.EscapedPath(), cleaned)
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path, u.RawPath = unescaped, escaped
	return u.String()
}

// do performs one request and decodes the envelope's data into out.
func (c *BackendClient) do(ctx context.Context, op, method, p string, query url.Values, payload any, out any) (int, error) {
	if c == nil {
		return 0, utils.NewAppError(op, "backend client not initialised", ErrUpstream)
	}
	if c.baseURL == "" {
		return 0, utils.NewAppError(op, "backend base URL not configured", ErrUpstream)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, utils.NewAppError(op, "rate limiter", errors.Join(ErrUpstream, err))
		}
	}

	endpoint := c.resolvePath(p)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, utils.NewAppError(op, "marshal payload", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, utils.NewAppError(op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, utils.NewAppError(op, "send request", errors.Join(ErrUpstream, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, utils.NewStatusError(op, resp.Status, resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return 0, utils.NewStatusError(op, msg, resp.StatusCode, ErrUpstream)
	}

	var envelope models.Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, utils.NewAppError(op, "decode response", errors.Join(ErrUpstream, err))
	}
	if !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "backend reported failure"
		}
		return 0, utils.NewStatusError(op, msg, resp.StatusCode, ErrUpstream)
	}
	if out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return 0, utils.NewAppError(op, "decode data", errors.Join(ErrUpstream, err))
		}
	}
	return envelope.Total, nil
}

// wirePlaybook tolerates both `playbook_id` and a document `_id`.
type wirePlaybook struct {
	models.Playbook
	DocumentID string `json:"_id,omitempty"`
}

func (w wirePlaybook) toModel() models.Playbook {
	pb := w.Playbook
	if pb.ID == "" {
		pb.ID = w.DocumentID
	}
	return pb
}

func toModels(in []wirePlaybook) []models.Playbook {
	out := make([]models.Playbook, 0, len(in))
	for _, w := range in {
		out = append(out, w.toModel())
	}
	return out
}
