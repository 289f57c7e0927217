package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/mybudget/internal/logging"
)

// RequestIDHeader correlates client and server log lines.
const RequestIDHeader = "X-Request-ID"

// tokenHolder is shared by the client and its transport.
type tokenHolder struct {
	mu    sync.RWMutex
	token string
}

func (h *tokenHolder) get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *tokenHolder) set(tok string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = tok
}

// authTransport is the single request augmentation point.
type authTransport struct {
	base   http.RoundTripper
	tokens *tokenHolder
	log    *logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if tok := t.tokens.get(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration", time.Since(start),
	}
	if err != nil {
		t.log.Warn("request failed", append(attrs, "error", err)...)
		return nil, err
	}
	attrs = append(attrs, "status", resp.StatusCode)
	if resp.StatusCode >= 400 {
		t.log.Warn("request rejected", attrs...)
	} else {
		t.log.Debug("request done", attrs...)
	}
	return resp, nil
}
