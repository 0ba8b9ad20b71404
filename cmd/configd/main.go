package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/recommender-config/internal/application"
	"github.com/eugenenazirov/recommender-config/internal/config"
	"github.com/eugenenazirov/recommender-config/internal/logging"
	"github.com/eugenenazirov/recommender-config/internal/properties"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("configd", "Recommender configuration service - serves values from an INI-style properties file")

	serveCmd := kingpinApp.Command("serve", "Load the properties file and serve lookups over HTTP").Default()
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	propertiesPath := serveCmd.Flag("properties", "Path to the properties file").String()
	logLevel := serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity per client (set 0 to disable)").Default("-1").Int()

	getCmd := kingpinApp.Command("get", "Print a single property value")
	getPath := getCmd.Flag("properties", "Path to the properties file").Default(properties.DefaultPath).String()
	getSection := getCmd.Arg("section", "Section name").Required().String()
	getKey := getCmd.Arg("key", "Key name").Required().String()

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case getCmd.FullCommand():
		if err := runGet(*getPath, *getSection, *getKey, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "configd: %v\n", err)
			os.Exit(1)
		}
	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{
			ConfigFile:     *configFile,
			Port:           port,
			PropertiesPath: propertiesPath,
			LogLevel:       logLevel,
		}
		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}
		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}
		serve(overrides)
	}
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// runGet loads the properties file and writes the requested value followed by a newline.
func runGet(path, section, key string, out io.Writer) error {
	store, err := properties.Load(path)
	if err != nil {
		return err
	}

	value, err := store.Get(section, key)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, value)
	return err
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
