// Command remindchat is a terminal chat client for the reminder bot.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xiaot623/gogo/remindchat/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	serverURL := flag.String("server", "", "Backend base URL (overrides SERVER_URL)")
	pushURL := flag.String("push", "", "Websocket push URL (overrides PUSH_URL)")
	plain := flag.Bool("plain", false, "Plain line mode instead of the full-screen UI")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = strings.TrimSuffix(*serverURL, "/")
	}
	if *pushURL != "" {
		cfg.PushURL = *pushURL
	}
	if *plain {
		cfg.Plain = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}

	logger.Info("Starting remindchat...")
	logger.Info("Server URL", "url", cfg.ServerURL)
	logger.Info("Push transports", "transports", cfg.Transports)
	logger.Info("Banner", "duration", cfg.BannerDuration, "policy", cfg.BannerPolicy)

	// Cancel on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, os.Stdin, os.Stdout, logger)
	stop()
	if err != nil {
		logger.Error("remindchat exited with error", "error", err)
	}
	logger.Info("remindchat stopped")
	_ = closeLog()

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
