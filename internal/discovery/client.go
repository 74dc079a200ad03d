package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"keepwarm/internal/transport"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized marks a discovery call the control plane rejected; it
// means the token is wrong, not that the cluster is unreachable.
var ErrUnauthorized = errors.New("discovery request unauthorized")

// Client queries the serving control plane for deployed endpoints.
type Client struct {
	logger  *logrus.Logger
	http    *transport.Client
	domain  string
	timeout time.Duration
}

// NewClient creates a discovery client for the given serving domain. The
// domain must already be normalized (no scheme, no trailing slash).
func NewClient(domain string, httpClient *transport.Client, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		logger:  logger,
		http:    httpClient,
		domain:  domain,
		timeout: timeout,
	}
}

type listEndpointsRequest struct {
	Namespace string `json:"namespace"`
}

type listEndpointsResponse struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// ListEndpoints returns every endpoint the control plane reports in the
// namespace, regardless of state. An empty result is valid.
func (c *Client) ListEndpoints(ctx context.Context, namespace string) ([]Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("https://%s/api/v1alpha1/listEndpoints", c.domain)

	var resp listEndpointsResponse
	if err := c.http.PostJSON(ctx, url, listEndpointsRequest{Namespace: namespace}, &resp); err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindHTTPError {
			if terr.Status == http.StatusUnauthorized || terr.Status == http.StatusForbidden {
				return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
			}
		}
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"namespace": namespace,
		"count":     len(resp.Endpoints),
	}).Debug("Listed endpoints")

	return resp.Endpoints, nil
}
