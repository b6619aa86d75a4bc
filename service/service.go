package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"codedrip/api"
	"codedrip/config"
	"codedrip/db"
	"codedrip/github"
	"codedrip/logger"
	"codedrip/mongostore"
	"codedrip/narrative"
)

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterPruneEvery = 3 * time.Minute
	readHeaderTimeout = 10 * time.Second
)

// Service represents the main application service
type Service struct {
	config   *config.Config
	store    Store
	analyzer *Analyzer
	limiter  *api.RateLimiter
	server   *http.Server
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewService wires the store, the hosting API client, the narrator and the
// HTTP server from cfg.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, narrator, err := newCollaborators(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize store: %v", ErrServiceInit, err)
	}

	analyzer := NewAnalyzer(store, client, narrator)
	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := api.NewRouter(analyzer, api.RouterConfig{GinMode: cfg.GinMode, Limiter: limiter})

	sctx, cancel := context.WithCancel(ctx)

	logger.Info("Service initialized successfully",
		zap.String("addr", cfg.Addr()),
		zap.String("llm_provider", cfg.LLM.Provider))

	return &Service{
		config:   cfg,
		store:    store,
		analyzer: analyzer,
		limiter:  limiter,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		ctx:    sctx,
		cancel: cancel,
	}, nil
}

// NewOfflineAnalyzer returns an Analyzer without a store, for building
// analyses that are not persisted.
func NewOfflineAnalyzer(ctx context.Context, cfg *config.Config) (*Analyzer, error) {
	client, narrator, err := newCollaborators(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(nil, client, narrator), nil
}

func newCollaborators(ctx context.Context, cfg *config.Config) (*github.Client, *narrative.Narrator, error) {
	client, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to initialize GitHub client: %v", ErrServiceInit, err)
	}

	gen, err := narrative.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to initialize generator: %v", ErrServiceInit, err)
	}
	return client, narrative.NewNarrator(gen), nil
}

// NewStore opens MongoDB for mongodb:// and mongodb+srv:// URLs and PostgreSQL otherwise.
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	if isMongoURL(cfg.URL) {
		store, err := mongostore.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	database, err := db.New(cfg)
	if err != nil {
		return nil, err
	}
	return database, nil
}

func isMongoURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "mongodb://") || strings.HasPrefix(lower, "mongodb+srv://")
}

// Analyzer returns the analysis operations backed by the service's store.
func (s *Service) Analyzer() *Analyzer {
	return s.analyzer
}

// Start serves HTTP until a shutdown signal arrives or the server fails.
func (s *Service) Start() error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go s.limiter.Run(limiterPruneEvery, s.ctx.Done())

	if err := s.waitForShutdown(errCh); err != nil {
		return err
	}
	return s.shutdown()
}

// waitForShutdown waits for the shutdown signal
func (s *Service) waitForShutdown(errCh <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown",
			zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-s.ctx.Done():
		logger.Info("Service context cancelled, shutting down")
	}
	return nil
}

func (s *Service) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceShutdown, err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	s.cancel()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("%w: failed to close store: %v", ErrServiceShutdown, err)
	}
	return nil
}
