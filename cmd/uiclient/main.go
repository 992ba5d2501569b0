package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/server"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML or TOML config file")
	origin := flag.String("origin", "", "UI server origin, e.g. http://localhost:8001")
	formFactor := flag.String("form-factor", "", "Default window form factor (mobile or desktop)")
	apiPort := flag.String("api-port", "", "View API port")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *origin != "" {
		cfg.Server.Origin = *origin
	}
	if *formFactor != "" {
		cfg.Server.FormFactor = *formFactor
	}
	if *apiPort != "" {
		cfg.API.Port = *apiPort
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *dev {
		cfg.Logging.Development = true
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
}
