// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the capRoute server.
// The server exposes the routing core through a management API: request
// routing, execution-outcome reporting, fallback checks, and learning
// statistics. The providers themselves are invoked by external callers;
// this process only makes and tracks the routing decisions.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/api/handlers/management"
	"github.com/traylinx/capRoute/internal/buildinfo"
	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/logging"
	"github.com/traylinx/capRoute/internal/service"
)

func main() {
	logging.SetupBaseLogger()

	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("capRoute %s (commit %s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	if wd, err := os.Getwd(); err == nil {
		if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
			log.Debugf("No .env file loaded: %v", errLoad)
		}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	if err := logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogsDir); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		runServe(cfg, *configPath)
	case "route":
		runRoute(cfg, args[1:])
	case "stats":
		runStats(cfg)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: caproute [flags] <command>")
	fmt.Println("\nCommands:")
	fmt.Println("  serve          Run the management API server (default)")
	fmt.Println("  route <text>   Build a selection plan for a one-shot request")
	fmt.Println("  stats          Print learning statistics")
	fmt.Println("\nFlags:")
	flag.PrintDefaults()
}

// runServe starts the management API and blocks until interrupted.
func runServe(cfg *config.Config, configPath string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := service.NewService(cfg)
	if err := svc.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize routing service: %v", err)
	}
	defer func() {
		if err := svc.Shutdown(context.Background()); err != nil {
			log.Errorf("Failed to shut down routing service: %v", err)
		}
	}()

	watcher := config.NewWatcher(configPath, svc.ApplyConfig)
	if err := watcher.Start(); err != nil {
		log.Warnf("Config hot-reload unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	management.NewHandler(svc).RegisterRoutes(engine)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("capRoute management API listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to shut down server: %v", err)
	}
}
