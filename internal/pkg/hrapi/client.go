package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client fetches raw bodies and submits status transitions.
type Client struct {
	transport *Transport
}

func NewClient(t *Transport) *Client {
	return &Client{transport: t}
}

// Fetch performs a read endpoint and returns the raw body.
func (c *Client) Fetch(ctx context.Context, ep Endpoint) ([]byte, error) {
	resp, err := c.transport.Get(ctx, ep.Path, ep.Query)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type actionBody struct {
	Reason string `json:"reason,omitempty"`
}

// Submit performs a status transition and returns the server's message, which may be empty.
func (c *Client) Submit(ctx context.Context, ep Endpoint, reason string) (string, error) {
	body := actionBody{Reason: strings.TrimSpace(reason)}

	var resp *Response
	var err error
	switch ep.Method {
	case http.MethodPost:
		resp, err = c.transport.Post(ctx, ep.Path, body, ep.Query)
	case http.MethodPut:
		resp, err = c.transport.Put(ctx, ep.Path, body, ep.Query)
	default:
		return "", fmt.Errorf("unsupported action method %s", ep.Method)
	}
	if err != nil {
		return "", err
	}

	var parsed struct {
		Message string `json:"message"`
	}
	// A success without a JSON message is still a success.
	_ = json.Unmarshal(resp.Data, &parsed)
	return strings.TrimSpace(parsed.Message), nil
}
