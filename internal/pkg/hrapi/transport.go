// Package hrapi talks to the external HR REST API.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2/clientcredentials"
)

// ErrNetwork wraps failures where no HTTP response was received.
var ErrNetwork = errors.New("hr api unreachable")

const maxErrorBody = 512

// APIError is a non-2xx answer of the HR API. Message is set only when the body
// carried one; Body keeps the raw text for logs.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, detail)
}

type Response struct {
	StatusCode int
	Data       []byte
}

type bearerKey struct{}

// WithBearer attaches the caller's token so it is forwarded upstream.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client

	// managedAuth is set when HTTPClient injects its own credentials.
	managedAuth bool
}

// NewTransport creates a transport that sends token, or the token found in the
// request context, as a bearer credential.
func NewTransport(baseURL, token string, timeout time.Duration) *Transport {
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthToken:  token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// NewClientCredentialsTransport authenticates every call with an OAuth2 client
// credentials token, refreshed as it expires.
func NewClientCredentialsTransport(ctx context.Context, baseURL string, cfg clientcredentials.Config, timeout time.Duration) *Transport {
	client := cfg.Client(ctx)
	client.Timeout = timeout
	return &Transport{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTPClient:  client,
		managedAuth: true,
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid url %s%s: %w", t.BaseURL, path, err)
	}
	q := u.Query()
	for k, v := range query {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get sends a GET request
func (t *Transport) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, nil, query)
}

// Post sends a POST request with JSON body
func (t *Transport) Post(ctx context.Context, path string, data any, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, data, query)
}

// Put sends a PUT request with JSON body
func (t *Transport) Put(ctx context.Context, path string, data any, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPut, path, data, query)
}

func (t *Transport) do(ctx context.Context, method, path string, data any, query map[string]string) (*Response, error) {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !t.managedAuth {
		if token := t.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resdata),
			Body:       truncate(strings.TrimSpace(string(resdata)), maxErrorBody),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Data: resdata}, nil
}

func (t *Transport) token(ctx context.Context) string {
	if token := bearerFrom(ctx); token != "" {
		return token
	}
	return t.AuthToken
}

// errorMessage extracts message, reason or error from a JSON error body.
// It returns "" for any other body.
func errorMessage(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, key := range []string{"message", "reason", "error"} {
			switch v := parsed[key].(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					return s
				}
			case map[string]any:
				if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}

	return ""
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ServerMessage returns the HR API's own message for err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
