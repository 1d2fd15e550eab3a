// Package services wires the server components together and owns their
// lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/j-veylop/tokenflex-dashboard/internal/api"
	"github.com/j-veylop/tokenflex-dashboard/internal/auth"
	"github.com/j-veylop/tokenflex-dashboard/internal/chatbot"
	"github.com/j-veylop/tokenflex-dashboard/internal/config"
	"github.com/j-veylop/tokenflex-dashboard/internal/db"
	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/metrics"
	"github.com/j-veylop/tokenflex-dashboard/internal/pipeline"
	"github.com/j-veylop/tokenflex-dashboard/internal/store"
	"github.com/j-veylop/tokenflex-dashboard/internal/upstream"
)

const pruneInterval = time.Hour

// Manager owns the long-lived server components.
type Manager struct {
	cfg      *config.Config
	clock    quartz.Clock
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	database *db.DB
	tokens   *auth.TokenSource
	upstream *upstream.Client
	pipeline *pipeline.Pipeline
	store    *store.Store
	bot      *chatbot.Bot

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager creates a new service manager. clock may be nil.
func NewManager(cfg *config.Config, clock quartz.Clock) (*Manager, error) {
	if clock == nil {
		clock = quartz.NewReal()
	}

	m := &Manager{
		cfg:      cfg,
		clock:    clock,
		registry: prometheus.NewRegistry(),
		bot:      chatbot.New(),
		stopChan: make(chan struct{}),
	}
	m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m.metrics = metrics.New(m.registry)

	var history store.HistoryBackend
	if cfg.DatabasePath != "" {
		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		m.database = database
		history = database
	}
	m.store = store.New(history)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	tokens, err := auth.NewTokenSource(auth.Options{
		HTTPClient:      httpClient,
		Clock:           clock,
		AuthURL:         cfg.AuthURL,
		ClientID:        cfg.ClientID,
		ClientSecret:    cfg.ClientSecret,
		CredentialsPath: cfg.CredentialsPath,
	})
	if err != nil {
		m.closeDatabase()
		return nil, err
	}
	m.tokens = tokens
	if err := m.tokens.Watch(); err != nil {
		logger.Warn("credentials file will not be watched", "path", cfg.CredentialsPath, "error", err)
	}

	m.upstream = upstream.New(upstream.Options{
		HTTPClient:  httpClient,
		Clock:       clock,
		Metrics:     m.metrics,
		BaseURL:     cfg.BaseURL,
		MaxAttempts: cfg.RequestMaxAttempts,
	})

	m.pipeline = pipeline.New(m.upstream, pipeline.Config{
		Clock:   clock,
		Metrics: m.metrics,
		Poll: pipeline.PollPolicy{
			Interval:    cfg.PollInterval,
			MaxAttempts: cfg.PollMaxAttempts,
			Timeout:     cfg.PollTimeout,
		},
	})

	if m.database != nil && cfg.HistoryRetention > 0 {
		m.wg.Add(1)
		go m.pruneLoop()
	}

	return m, nil
}

// Handler returns the HTTP handler serving the API.
func (m *Manager) Handler() http.Handler {
	h := api.NewHandler(m.upstream, m.pipeline, m.store, m.bot, m.clock)
	return api.NewRouter(h, api.RouterOptions{
		Tokens:             m.tokens,
		Gatherer:           m.registry,
		CORSAllowedOrigins: m.cfg.CORSAllowedOrigins,
		RateLimitPerMinute: m.cfg.RateLimitPerMinute,
	})
}

// Store returns the batch store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Database returns the history database, or nil when disabled.
func (m *Manager) Database() *db.DB {
	return m.database
}

// PruneHistory deletes persisted batches older than the retention window.
func (m *Manager) PruneHistory(ctx context.Context) (int64, error) {
	if m.database == nil || m.cfg.HistoryRetention <= 0 {
		return 0, nil
	}
	return m.database.DeleteBatchesBefore(ctx, m.clock.Now().Add(-m.cfg.HistoryRetention))
}

func (m *Manager) pruneLoop() {
	defer m.wg.Done()

	m.pruneOnce()

	ticker := m.clock.NewTicker(pruneInterval, "services", "prune")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.pruneOnce()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) pruneOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := m.PruneHistory(ctx)
	if err != nil {
		logger.Error("failed to prune batch history", "error", err)
		return
	}
	if n > 0 {
		logger.Info("pruned batch history", "batches", n, "retention", m.cfg.HistoryRetention)
	}
}

func (m *Manager) closeDatabase() {
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
}

// Close stops background work and releases resources.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()

		if m.tokens != nil {
			if err := m.tokens.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
