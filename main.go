package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keepwarm/internal/api"
	"keepwarm/internal/config"
	"keepwarm/internal/discovery"
	"keepwarm/internal/generator"
	"keepwarm/internal/logger"
	"keepwarm/internal/traffic"
	"keepwarm/internal/transport"

	"github.com/joho/godotenv"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		token      = flag.String("token", "", "CDP authentication token (or set CDP_TOKEN)")
		domain     = flag.String("domain", "", "CML Serving domain, e.g. my-cluster.cloudera.com (or set CML_DOMAIN)")
		namespace  = flag.String("namespace", "", "Kubernetes namespace to monitor")
		interval   = flag.Int("interval", 0, "Seconds between traffic generation cycles")
		maxTokens  = flag.Int("max-tokens", 0, "Maximum tokens for text generation")
		noVerify   = flag.Bool("no-verify-ssl", false, "Disable SSL certificate verification")
		once       = flag.Bool("once", false, "Run once and exit instead of continuously")
		maxFails   = flag.Int("max-discovery-failures", 0, "Consecutive discovery failures before giving up")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	// A .env file may carry the token and domain in dev setups; its
	// absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the settings file only when explicitly set.
	if *token != "" {
		cfg.Token = *token
	}
	if *domain != "" {
		cfg.Domain = *domain
	}
	if *namespace != "" {
		cfg.Namespace = *namespace
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = config.Seconds(*interval)
		case "max-tokens":
			cfg.MaxTokens = *maxTokens
		case "no-verify-ssl":
			cfg.InsecureSkipVerify = *noVerify
		case "once":
			cfg.Once = *once
		case "max-discovery-failures":
			cfg.Discovery.MaxFailures = *maxFails
		case "debug":
			if *debug {
				cfg.Logging.Level = "debug"
			}
		}
	})

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	httpClient := transport.NewClient(cfg.RequestTimeout.Duration, cfg.Token, cfg.InsecureSkipVerify)
	directory := discovery.NewClient(cfg.Domain, httpClient, cfg.Discovery.Timeout.Duration, log)
	builders := traffic.NewBuilders(cfg.MaxTokens)
	dispatcher := generator.NewDispatcher(httpClient, builders, log)
	gen := generator.New(cfg, directory, dispatcher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Infof("Received signal %s, shutting down", sig)
		cancel()
	}()

	var apiServer *http.Server
	if !cfg.API.Disabled {
		statusAPI := api.New(gen, log)
		apiServer = &http.Server{
			Addr:    cfg.API.Listen,
			Handler: statusAPI.Handler(),
		}
		go func() {
			log.Infof("Status API listening on %s", cfg.API.Listen)
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("Status API server error: %v", err)
			}
		}()
	}

	runErr := gen.Run(ctx)

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Status API shutdown error: %v", err)
		}
	}

	if runErr != nil {
		log.Errorf("Traffic generation failed: %v", runErr)
		os.Exit(1)
	}

	log.Info("Traffic generator stopped gracefully")
}
