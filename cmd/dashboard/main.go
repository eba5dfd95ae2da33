// Command dashboard is the terminal admin console for the medstock API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"medstock/internal/tui"
	"medstock/pkg/client"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logPath := flag.String("log", "", "Write logs to this file instead of discarding them")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	cfg, err := tui.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, nil))
	}

	api := client.New(cfg.APIURL,
		client.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout.Duration,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
		client.WithTokenStore(client.NewFileStore(cfg.TokenFile)),
		client.WithLogger(logger),
	)
	logger.Info("dashboard starting", "api_url", cfg.APIURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.New(ctx, api, cfg.LowStock), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
