package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/recommender-config/internal/api"
	"github.com/eugenenazirov/recommender-config/internal/config"
	"github.com/eugenenazirov/recommender-config/internal/properties"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	store  *properties.Store
	logger *zap.Logger
	server *http.Server
}

// New loads the properties file and wires the HTTP server around it.
// The store is fully built before New returns, so no request can observe a partially loaded file.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := properties.Load(cfg.PropertiesPath)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	logger.Info("properties loaded", zap.String("path", store.Path()))

	handler := api.NewHandler(store, api.WithSource(store.Path()))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		store:  store,
		logger: logger,
		server: NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listen address and serves requests in a goroutine.
// Bind failures are returned; serve failures after that are fatal.
func (a *App) Start() error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	a.logger.Info("server listening", zap.String("addr", listener.Addr().String()))
	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Store returns the loaded properties snapshot.
func (a *App) Store() *properties.Store {
	return a.store
}
