package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keepwarm/internal/discovery"
	"keepwarm/internal/traffic"
	"keepwarm/internal/transport"

	"github.com/sirupsen/logrus"
)

// Poster sends JSON POST requests. Satisfied by *transport.Client; tests
// substitute their own.
type Poster interface {
	PostJSON(ctx context.Context, url string, data interface{}, target interface{}) error
}

// Dispatcher sends one sample request to one classified endpoint and
// normalizes the result into an Outcome. A failed endpoint never raises;
// it contributes a failed Outcome and the cycle moves on.
type Dispatcher struct {
	logger   *logrus.Logger
	http     Poster
	builders *traffic.Builders
}

// NewDispatcher creates a dispatcher sending through httpClient.
func NewDispatcher(httpClient Poster, builders *traffic.Builders, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		http:     httpClient,
		builders: builders,
	}
}

// Dispatch classifies the endpoint, sends the matching sample request and
// returns the outcome. Unsupported endpoints are skipped without any
// network call; the skip is a success, not a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, ep discovery.Endpoint) Outcome {
	start := time.Now()
	family := traffic.Classify(ep)

	log := d.logger.WithFields(logrus.Fields{
		"endpoint": ep.Name,
		"task":     ep.Task,
		"family":   family,
	})

	if family == traffic.FamilyUnsupported {
		log.Infof("Skipping endpoint %s (task %s has no sample traffic)", ep.Name, ep.Task)
		return Outcome{
			Endpoint: ep.Name,
			Family:   family,
			Success:  true,
			Skipped:  true,
			Message:  fmt.Sprintf("skipped: task %s has no sample traffic", ep.Task),
			Elapsed:  time.Since(start),
		}
	}

	req, ok := d.builders.Build(ep, family)
	if !ok {
		return Outcome{
			Endpoint: ep.Name,
			Family:   family,
			Success:  true,
			Skipped:  true,
			Message:  fmt.Sprintf("skipped: no builder for family %s", family),
			Elapsed:  time.Since(start),
		}
	}

	url := ep.URL
	if req.Path != "" {
		url = ep.BaseURL() + req.Path
	}

	log.Debugf("Sending %s sample request to %s", family, url)

	msg, err := d.send(ctx, url, req)
	if err != nil {
		reason := failureReason(err)
		log.Errorf("Sample request failed for %s: %s", ep.Name, reason)
		return Outcome{
			Endpoint: ep.Name,
			Family:   family,
			Message:  reason,
			Elapsed:  time.Since(start),
		}
	}

	log.Infof("Sample request succeeded for %s: %s", ep.Name, msg)
	return Outcome{
		Endpoint: ep.Name,
		Family:   family,
		Success:  true,
		Message:  msg,
		Elapsed:  time.Since(start),
	}
}

// send posts the request, falling back to the alternate payload shape
// when the server rejects the first one with an HTTP error.
func (d *Dispatcher) send(ctx context.Context, url string, req traffic.Request) (string, error) {
	msg, err := d.sendBody(ctx, url, req.Shape, req.Body)
	if err == nil || req.AltBody == nil {
		return msg, err
	}

	var terr *transport.Error
	if errors.As(err, &terr) && terr.Kind == transport.KindHTTPError {
		return d.sendBody(ctx, url, req.Shape, req.AltBody)
	}
	return msg, err
}

func (d *Dispatcher) sendBody(ctx context.Context, url string, shape traffic.Shape, body interface{}) (string, error) {
	switch shape {
	case traffic.ShapeEmbedding:
		var resp traffic.EmbeddingResponse
		if err := d.http.PostJSON(ctx, url, body, &resp); err != nil {
			return "", err
		}
		if len(resp.Data) > 0 {
			return fmt.Sprintf("embedding received (dim %d)", len(resp.Data[0].Embedding)), nil
		}
		return "embedding received", nil

	case traffic.ShapeRerank:
		var resp traffic.RerankResponse
		if err := d.http.PostJSON(ctx, url, body, &resp); err != nil {
			return "", err
		}
		n := len(resp.Rankings)
		if n == 0 {
			n = len(resp.Results)
		}
		if n > 0 {
			return fmt.Sprintf("rerank scores received (%d passages)", n), nil
		}
		return "rerank response received", nil

	case traffic.ShapeCompletion:
		var resp traffic.ChatResponse
		if err := d.http.PostJSON(ctx, url, body, &resp); err != nil {
			return "", err
		}
		return "completion received", nil

	default:
		var resp traffic.ChatResponse
		if err := d.http.PostJSON(ctx, url, body, &resp); err != nil {
			return "", err
		}
		return "chat completion received", nil
	}
}

// failureReason turns a request error into a short triageable category,
// never raw error text alone.
func failureReason(err error) string {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.Error()
	}
	return fmt.Sprintf("request failed: %v", err)
}
