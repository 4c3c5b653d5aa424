package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	perrors "pocketctl/cli/internal/errors"
	"pocketctl/cli/internal/logging"
)

// HTTP implements API over the backend's REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://127.0.0.1:8090")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client    *http.Client
	userAgent string
	logger    *pterm.Logger
}

// newHTTP creates a new HTTP client with the given base URL.
// It configures a 10-second timeout for all requests.
func newHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "pocketctl",
	}
	for _, o := range opts {
		o(h)
	}
	h.logger = logging.OrNop(h.logger)
	return h
}

// BaseURL returns the backend address this client talks to.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Health calls GET /api/health. No authentication required.
func (h *HTTP) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := h.doJSON(ctx, http.MethodGet, "/api/health", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// collectionPath builds /api/collections/{collection}/{suffix}.
func collectionPath(collection, suffix string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/" + suffix
}

// setStandardHeaders applies headers shared by every request.
func (h *HTTP) setStandardHeaders(req *http.Request) string {
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-Id", reqID)
	return reqID
}

// doJSON sends body as JSON and decodes a 2xx response into out (when non-nil).
// Non-2xx responses become *errors.E classified by status; transport failures
// become errors.KindNetwork.
func (h *HTTP) doJSON(ctx context.Context, method, path, token string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, rdr)
	if err != nil {
		return err
	}
	reqID := h.setStandardHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Debug("Backend request failed", h.logger.Args(
			"method", method, "path", path, "request_id", reqID, "error", logging.Mask(err.Error())))
		return perrors.Wrap(perrors.KindNetwork, fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	h.logger.Debug("Backend request", h.logger.Args(
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start).Round(time.Millisecond)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.Wrap(perrors.KindServer, "decode response", err)
	}
	return nil
}

// decodeError reads a {code, message, data} error body. Anything else is
// reported with the trimmed raw body as message.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &perrors.E{
		Kind:   perrors.KindForStatus(resp.StatusCode),
		Status: resp.StatusCode,
	}

	var body struct {
		Code    int            `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		e.Message = body.Message
		if len(body.Data) > 0 {
			e.Data = body.Data
		}
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
