package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"keepwarm/internal/config"
	"keepwarm/internal/discovery"
	"keepwarm/internal/generator"
	"keepwarm/internal/traffic"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	endpoints []discovery.Endpoint
}

func (s stubLister) ListEndpoints(ctx context.Context, namespace string) ([]discovery.Endpoint, error) {
	return s.endpoints, nil
}

type stubPoster struct{}

func (stubPoster) PostJSON(ctx context.Context, url string, data interface{}, target interface{}) error {
	return nil
}

func newTestServer(endpoints []discovery.Endpoint) (*Server, *generator.Generator) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg, _ := config.Load("")
	cfg.Pause = config.Duration{}

	dispatcher := generator.NewDispatcher(stubPoster{}, traffic.NewBuilders(cfg.MaxTokens), log)
	gen := generator.New(cfg, stubLister{endpoints: endpoints}, dispatcher, log)

	return New(gen, log), gen
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleStatusBeforeFirstCycle(t *testing.T) {
	server, _ := newTestServer(nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CyclesCompleted int              `json:"cycles_completed"`
		LastCycle       *json.RawMessage `json:"last_cycle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.CyclesCompleted)
	assert.Nil(t, resp.LastCycle)
}

func TestHandleStatusAfterCycle(t *testing.T) {
	server, gen := newTestServer([]discovery.Endpoint{
		{
			Name: "llama", Task: "TEXT_GENERATION", APIStandard: "openai-chat",
			State: "Running", ModelName: "llama",
			URL: "https://llama.example.com/model/v1/chat/completions",
		},
	})
	gen.RunCycle(context.Background())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CyclesCompleted int `json:"cycles_completed"`
		LastCycle       struct {
			Attempted int `json:"attempted"`
			Succeeded int `json:"succeeded"`
		} `json:"last_cycle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.CyclesCompleted)
	assert.Equal(t, 1, resp.LastCycle.Attempted)
	assert.Equal(t, 1, resp.LastCycle.Succeeded)
}

func TestHandleResources(t *testing.T) {
	server, _ := newTestServer(nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/resources", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot ResourceSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Greater(t, snapshot.CPUCount, 0)
	assert.Greater(t, snapshot.MemoryTotal, uint64(0))
}

func TestTakeSnapshot(t *testing.T) {
	snapshot, err := TakeSnapshot()
	require.NoError(t, err)
	assert.Greater(t, snapshot.CPUCount, 0)
	assert.Greater(t, snapshot.MemoryTotal, uint64(0))
	assert.False(t, snapshot.Timestamp.IsZero())
}
