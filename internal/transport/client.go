package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Kind categorizes a request failure so callers can log a triageable
// reason instead of raw error text.
type Kind string

const (
	KindConnection Kind = "connection error"
	KindTimeout    Kind = "timeout"
	KindCancelled  Kind = "cancelled"
	KindHTTPError  Kind = "http error"
	KindBadBody    Kind = "malformed response body"
)

// Error is a categorized request failure. Status is set only for
// KindHTTPError.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPError:
		return fmt.Sprintf("HTTP %d", e.Status)
	case KindTimeout:
		return "request timed out"
	case KindCancelled:
		return "request cancelled"
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Client is a JSON HTTP client with a bounded per-request timeout and a
// bearer token attached to every request.
type Client struct {
	httpClient *http.Client
	token      string
}

// NewClient creates a new client. skipVerify disables TLS certificate
// verification, for clusters fronted by self-signed certificates.
func NewClient(timeout time.Duration, token string, skipVerify bool) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if skipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		token: token,
	}
}

// PostJSON sends data as a JSON POST to url and decodes the response into
// target when target is non-nil. Failures come back as *Error.
func (c *Client) PostJSON(ctx context.Context, url string, data interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: categorize(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body so the failure is debuggable.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Kind:   KindHTTPError,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return &Error{Kind: KindBadBody, Err: err}
		}
	}

	return nil
}

func categorize(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}
