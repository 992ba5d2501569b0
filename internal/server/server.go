package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/api"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/connection"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/mirror"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	userAgent       = "uiclient/1.0"
)

// Server owns the session and the optional view-layer HTTP server
type Server struct {
	config     *config.Config
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
	loop       *loop.Loop
	mirror     *mirror.Mirror
	controller *session.Controller
	disk       *model.DiskCache
	router     *gin.Engine
	http       *http.Server
}

// NewServer builds every component from cfg without starting anything
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	logger.Info("Initializing UI client",
		zap.String("origin", cfg.Server.Origin),
		zap.String("form_factor", cfg.Server.FormFactor),
	)

	formFactor, err := model.ParseFormFactor(cfg.Server.FormFactor)
	if err != nil {
		return nil, err
	}
	socketURL, err := connection.SocketURL(cfg.Server.Origin, cfg.Server.SocketPath)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("uiclient", logger.Component("tracing"))
	eventLoop := loop.New(0)

	// Model fetcher
	clientCfg := model.DefaultClientConfig(cfg.Server.Origin)
	clientCfg.ResourcePath = cfg.Server.ResourcePath
	clientCfg.Timeout = cfg.Model.FetchTimeout()
	clientCfg.RetryMax = cfg.Model.RetryMax
	clientCfg.RateLimit = cfg.Model.RequestsPerSecond
	clientCfg.UserAgent = userAgent
	client := model.NewClient(clientCfg, logger.Component("resources"))

	fetcher := model.NewFetcher(client, model.ParseOptions{VerifyHash: cfg.Model.VerifyHash}, logger.Component("model")).
		WithMemoryCache(model.NewMemoryCache(cfg.Model.MemoryEntries)).
		WithMetrics(metrics).
		WithTracer(tracer)

	var disk *model.DiskCache
	if cfg.Model.CacheDir != "" {
		disk, err = model.NewDiskCache(cfg.Model.CacheDir)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to open model cache: %w", err)
		}
		fetcher.WithDiskCache(disk)
		logger.Info("Model disk cache enabled", zap.String("dir", cfg.Model.CacheDir))
	}

	// Session
	m := mirror.New(logger.Component("mirror")).WithMetrics(metrics)
	dialer := &connection.WebsocketDialer{
		HandshakeTimeout: cfg.Connection.HandshakeTimeout(),
		WriteTimeout:     cfg.Connection.WriteTimeout(),
		ReadLimit:        cfg.Connection.ReadLimitBytes,
		Header:           http.Header{"User-Agent": []string{userAgent}},
	}
	controller := session.New(session.Options{
		Connection: connection.Options{
			URL:                socketURL,
			PingInterval:       cfg.Connection.PingInterval(),
			IdleTimeout:        cfg.Connection.IdleTimeout(),
			BaseReconnectDelay: cfg.Connection.BaseReconnectDelay(),
			MaxReconnectDelay:  cfg.Connection.MaxReconnectDelay(),
			MaxFrameBytes:      cfg.Connection.MaxFrameBytes,
		},
		FormFactor:   formFactor,
		FetchTimeout: cfg.Model.FetchTimeout(),
	}, eventLoop, dialer, fetcher, m, logger.Component("session")).WithMetrics(metrics)

	s := &Server{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		loop:       eventLoop,
		mirror:     m,
		controller: controller,
		disk:       disk,
	}

	// View-layer adapter
	handlers := api.NewHandlers(controller, metrics, 0, logger.Component("api"))
	s.router = api.NewRouter(handlers, metrics, api.RouterConfig{
		Development:      cfg.Logging.Development,
		CORS:             middleware.DefaultCORSConfig(cfg.API.Host, cfg.API.Port),
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
		Tracer: tracer,
	}, logger.Component("api"))

	if cfg.API.Enabled {
		s.http = &http.Server{
			Addr:              cfg.API.Address(),
			Handler:           s.router,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	logger.Info("UI client initialized", zap.String("socket", socketURL))
	return s, nil
}

// Handler returns the view-layer router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Controller returns the session controller
func (s *Server) Controller() *session.Controller {
	return s.controller
}

// Run starts the session and the HTTP server and blocks until ctx is
// cancelled or the HTTP server fails, then shuts everything down
func (s *Server) Run(ctx context.Context) error {
	// the loop outlives ctx so shutdown can still post to it
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go s.loop.Run(loopCtx)

	s.controller.Start()

	errCh := make(chan error, 1)
	if s.http != nil {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		go func() {
			if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *Server) shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down UI client...")

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
		}
	}
	if err := s.controller.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop session: %w", err))
	}
	s.loop.Stop()

	if s.disk != nil {
		if err := s.disk.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close model cache: %w", err))
		}
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
