package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/remindchat/internal/backend"
	"github.com/xiaot623/gogo/remindchat/internal/chat"
	"github.com/xiaot623/gogo/remindchat/internal/config"
	"github.com/xiaot623/gogo/remindchat/internal/push"
	"github.com/xiaot623/gogo/remindchat/internal/tui"
)

// app is the wired client: the chat context and the push connection feeding
// its listener.
type app struct {
	client *chat.Client
	push   *push.Client
}

func newApp(cfg *config.Config, view chat.View, logger *slog.Logger) (*app, error) {
	wsURL, err := cfg.PushEndpoint()
	if err != nil {
		return nil, err
	}

	pushClient, err := push.NewClient(push.Options{
		Transports:         cfg.Transports,
		WebSocketURL:       wsURL,
		PollURL:            cfg.PollEndpoint(),
		PollInterval:       cfg.PollInterval,
		ReconnectBaseDelay: cfg.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.ReconnectMaxDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create push client: %w", err)
	}

	client := chat.NewClient(chat.Options{
		Backend:        backend.NewClient(cfg.ServerURL, cfg.RequestTimeout),
		View:           view,
		BannerDuration: cfg.BannerDuration,
		BannerPolicy:   chat.HidePolicy(cfg.BannerPolicy),
		Logger:         logger,
	})
	client.Listener().Attach(pushClient)

	return &app{client: client, push: pushClient}, nil
}

// run drives the client until the user quits or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if cfg.Plain {
		return runPlain(ctx, cfg, in, out, logger)
	}
	return runTUI(ctx, cfg, in, out, logger)
}

func runPlain(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	view := tui.NewLineView(out)
	a, err := newApp(cfg, view, logger)
	if err != nil {
		return err
	}
	defer a.client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.push.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return tui.RunPlain(gctx, in, view, a.client.Dispatcher(), logger)
	})
	return g.Wait()
}

func runTUI(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	view := tui.NewProgramView()
	a, err := newApp(cfg, view, logger)
	if err != nil {
		return err
	}
	defer a.client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	model := tui.NewModel(gctx, a.client.Dispatcher(), a.push.Transport)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(gctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	view.Attach(p)

	g.Go(func() error {
		return a.push.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newLogger builds the slog logger. The full-screen UI owns the terminal, so
// it logs to the configured file; plain mode logs to stderr.
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	if !cfg.Plain {
		w = io.Discard
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			w, closer = f, f.Close
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
