package application

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/recommender-config/internal/config"
	"github.com/eugenenazirov/recommender-config/internal/properties"
)

func TestNewLoadsPropertiesEagerly(t *testing.T) {
	cfg := baseTestConfig(t, ":8085")

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	got, err := app.Store().Get("data", "dataset")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != "/var/data/train.csv" {
		t.Fatalf("unexpected dataset %q", got)
	}
	if app.server == nil || app.server.Handler == nil {
		t.Fatalf("expected server with a handler to be initialized")
	}

	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/data/dataset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected server handler to serve lookups, got %d", rec.Code)
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewFailsWhenPropertiesMissing(t *testing.T) {
	cfg := baseTestConfig(t, ":0")
	cfg.PropertiesPath = filepath.Join(t.TempDir(), "absent.properties")

	_, err := New(cfg, zaptest.NewLogger(t))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewFailsWhenPropertiesMalformed(t *testing.T) {
	cfg := baseTestConfig(t, ":0")
	if err := os.WriteFile(cfg.PropertiesPath, []byte("[data]\nno delimiter here\n"), 0o600); err != nil {
		t.Fatalf("write properties: %v", err)
	}

	if _, err := New(cfg, zaptest.NewLogger(t)); !errors.Is(err, properties.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig(t, "9090")

	server := NewServer(cfg, nil)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestStartAndShutdownDoNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	app, err := New(baseTestConfig(t, "127.0.0.1:0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := app.Server().Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestStartReportsBindFailure(t *testing.T) {
	app, err := New(baseTestConfig(t, "256.0.0.1:99999"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := app.Start(); err == nil {
		t.Fatalf("expected bind failure for invalid address")
	}
}

func baseTestConfig(t *testing.T, port string) config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), properties.DefaultPath)
	if err := os.WriteFile(path, []byte("[data]\ndataset = /var/data/train.csv\n"), 0o600); err != nil {
		t.Fatalf("write properties: %v", err)
	}

	return config.Config{
		Port:                 port,
		PropertiesPath:       path,
		LogLevel:             "info",
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
