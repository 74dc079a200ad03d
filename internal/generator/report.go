package generator

import (
	"time"

	"keepwarm/internal/traffic"
)

// Outcome records one dispatch attempt against one endpoint.
type Outcome struct {
	Endpoint string         `json:"endpoint"`
	Family   traffic.Family `json:"family"`
	Success  bool           `json:"success"`
	Skipped  bool           `json:"skipped,omitempty"`
	Message  string         `json:"message"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Report aggregates one full discovery-classify-dispatch cycle. It is
// handed to logging and the status API, never persisted.
type Report struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Outcomes   []Outcome `json:"outcomes"`

	// DiscoveryError is set when the cycle was aborted before any
	// dispatch because the control plane could not be queried.
	DiscoveryError string `json:"discovery_error,omitempty"`
}
