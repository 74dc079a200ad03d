package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"keepwarm/internal/config"
	"keepwarm/internal/discovery"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EndpointLister enumerates deployed endpoints. Satisfied by
// *discovery.Client.
type EndpointLister interface {
	ListEndpoints(ctx context.Context, namespace string) ([]discovery.Endpoint, error)
}

// Generator drives the keep-warm loop: discover endpoints, send each one
// a sample request, tally the results, sleep, repeat.
type Generator struct {
	logger     *logrus.Logger
	cfg        *config.Config
	directory  EndpointLister
	dispatcher *Dispatcher

	mu         sync.RWMutex
	lastReport *Report
	cycles     int
}

// New creates a traffic generator.
func New(cfg *config.Config, directory EndpointLister, dispatcher *Dispatcher, logger *logrus.Logger) *Generator {
	return &Generator{
		logger:     logger,
		cfg:        cfg,
		directory:  directory,
		dispatcher: dispatcher,
	}
}

// RunCycle performs one full discovery-classify-dispatch pass and returns
// its report. A discovery failure aborts the cycle before any dispatch
// and is recorded on the report instead of returned.
func (g *Generator) RunCycle(ctx context.Context) *Report {
	report := &Report{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}

	g.logger.Infof("Discovering endpoints in namespace %s", g.cfg.Namespace)

	endpoints, err := g.directory.ListEndpoints(ctx, g.cfg.Namespace)
	if err != nil {
		g.logger.WithError(err).Error("Endpoint discovery failed, aborting cycle")
		report.DiscoveryError = err.Error()
		report.FinishedAt = time.Now()
		g.record(report)
		return report
	}

	eligible := make([]discovery.Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		if !ep.Eligible() {
			g.logger.Debugf("Skipping endpoint %s (state: %s)", ep.Name, ep.State)
			continue
		}
		g.logger.WithFields(logrus.Fields{
			"endpoint": ep.Name,
			"task":     ep.Task,
			"state":    ep.State,
		}).Info("Found endpoint")
		eligible = append(eligible, ep)
	}

	if len(eligible) == 0 {
		g.logger.Warn("No running endpoints found")
	}

	for i, ep := range eligible {
		if ctx.Err() != nil {
			break
		}

		outcome := g.dispatcher.Dispatch(ctx, ep)
		report.Outcomes = append(report.Outcomes, outcome)
		report.Attempted++
		if outcome.Success {
			report.Succeeded++
		}

		// Pause between endpoints so the serving cluster never sees a
		// burst from the warmer itself.
		if i < len(eligible)-1 {
			if !sleepCtx(ctx, g.cfg.Pause.Duration) {
				break
			}
		}
	}

	report.FinishedAt = time.Now()
	g.logger.Infof("Traffic cycle complete: %d/%d successful", report.Succeeded, report.Attempted)
	g.record(report)

	return report
}

// Run executes the generator in the configured mode. In once mode a
// single cycle runs; its dispatch failures do not affect the return
// value, only a discovery failure does. In continuous mode cycles repeat
// every interval until ctx is cancelled or discovery fails
// MaxFailures times in a row.
func (g *Generator) Run(ctx context.Context) error {
	if g.cfg.Once {
		g.logger.Info("Running single traffic generation cycle")
		report := g.RunCycle(ctx)
		if report.DiscoveryError != "" {
			return fmt.Errorf("endpoint discovery failed: %s", report.DiscoveryError)
		}
		return nil
	}

	g.logger.Infof("Starting continuous traffic generation (interval: %s, namespace: %s)",
		g.cfg.Interval, g.cfg.Namespace)

	consecutiveFailures := 0
	for {
		report := g.RunCycle(ctx)

		if report.DiscoveryError != "" {
			consecutiveFailures++
			if consecutiveFailures >= g.cfg.Discovery.MaxFailures {
				return fmt.Errorf("endpoint discovery failed %d times in a row, giving up: %s",
					consecutiveFailures, report.DiscoveryError)
			}
			g.logger.Warnf("Discovery has failed %d/%d consecutive cycles",
				consecutiveFailures, g.cfg.Discovery.MaxFailures)
		} else {
			consecutiveFailures = 0
		}

		if ctx.Err() != nil {
			g.logger.Info("Traffic generation stopped")
			return nil
		}

		g.logger.Debugf("Waiting %s before next cycle", g.cfg.Interval)
		if !sleepCtx(ctx, g.cfg.Interval.Duration) {
			g.logger.Info("Traffic generation stopped")
			return nil
		}
	}
}

// Status returns the most recent cycle report and the number of cycles
// completed so far. The report is nil before the first cycle finishes.
func (g *Generator) Status() (*Report, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastReport, g.cycles
}

func (g *Generator) record(report *Report) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastReport = report
	g.cycles++
}

// sleepCtx sleeps for d unless ctx is cancelled first; it reports whether
// the full sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
