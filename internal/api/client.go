// Package api is the typed client of the budget REST backend.
package api

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

	"github.com/hashicorp/go-cleanhttp"

	"github.com/jask/mybudget/internal/logging"
)

// Options configures a Client.
type Options struct {
	// Endpoint is base url plus version, e.g. http://localhost:8080/api/v1.
	Endpoint string
	Timeout  time.Duration
	Token    string
	Logger   *logging.Logger
	// Transport defaults to a pooled cleanhttp transport.
	Transport http.RoundTripper
}

// Client issues requests against one endpoint. Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   *tokenHolder
	log      *logging.Logger
}

func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithComponent("api")
	base := opts.Transport
	if base == nil {
		base = cleanhttp.DefaultPooledTransport()
	}
	tokens := &tokenHolder{token: opts.Token}
	hc := cleanhttp.DefaultPooledClient()
	hc.Transport = &authTransport{base: base, tokens: tokens, log: log}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	}
	return &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		http:     hc,
		tokens:   tokens,
		log:      log,
	}
}

// Endpoint returns the base url requests are issued against.
func (c *Client) Endpoint() string { return c.endpoint }

// SetToken replaces the bearer token for subsequent requests.
func (c *Client) SetToken(tok string) { c.tokens.set(tok) }

// HasToken reports whether a bearer token is set.
func (c *Client) HasToken() bool { return c.tokens.get() != "" }

// envelope is the common response shape.
type envelope struct {
	Success    *bool               `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Error      string              `json:"error"`
	Errors     map[string][]string `json:"errors"`
	Pagination *Pagination         `json:"pagination"`

	Token string `json:"token"`
	User  *User  `json:"user"`

	TotaleGenerale json.RawMessage `json:"totale_generale"`
	Statistiche    json.RawMessage `json:"statistiche"`
	Conto          *AccountRef     `json:"conto"`
}

func (e *envelope) decodeData(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = firstNonEmpty(env.Message, env.Error)
			apiErr.Fields = env.Errors
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: firstNonEmpty(env.Message, env.Error), Fields: env.Errors}
	}
	return &env, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func idPath(resource string, id int64) string {
	return fmt.Sprintf("%s/%d", resource, id)
}
