// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// tableside is the terminal client for the Tableside restaurant
// service: browse the menu, build a cart and place orders, book a
// table, and talk to the ordering assistant, approving or rejecting
// the orders it proposes.
//
// The service URL comes from the config file, overridden by the saved
// session (written at login) when it names one. Without a session file
// the dashboard still browses the menu and tables; ordering, booking,
// and chat need the bearer token a login provides.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/approval"
	"github.com/tableside/tableside/lib/cart"
	"github.com/tableside/tableside/lib/clock"
	"github.com/tableside/tableside/lib/config"
	"github.com/tableside/tableside/lib/reservation"
	"github.com/tableside/tableside/lib/session"
	"github.com/tableside/tableside/lib/transcript"
	"github.com/tableside/tableside/lib/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var sessionPath string
	var logOutput string

	flagSet := pflag.NewFlagSet("tableside", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: $TABLESIDE_CONFIG)")
	flagSet.StringVar(&sessionPath, "session-file", "", "path to session file (default: $TABLESIDE_SESSION_FILE or ~/.config/tableside/session.json)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// A missing session is not fatal: the dashboard browses without
	// one and the service rejects what needs a token.
	userSession := loadSession(sessionPath)

	serviceURL := cfg.ServiceURL
	if userSession.ServiceURL != "" {
		serviceURL = userSession.ServiceURL
	}

	// Background logging goes through the status bar, never stderr,
	// which would corrupt the alt-screen display. An optional file
	// handler captures everything for post-mortem reading.
	tuiHandler := ui.NewLogHandler(slog.LevelWarn)
	var logger *slog.Logger
	if logOutput != "" {
		fileHandler, closeFile, fileErr := openFileLogHandler(logOutput)
		if fileErr != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, fileErr)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: serviceURL,
		Token:   userSession.AccessToken,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	wallClock := clock.Real()
	model := ui.New(ui.Params{
		Service:    client,
		Session:    userSession,
		Cart:       cart.New(client, logger),
		Tables:     reservation.New(client, logger),
		Transcript: transcript.New(wallClock, cfg.Chat.ScrollThreshold),
		NewPoller: func() *approval.Poller {
			return approval.NewPoller(client, wallClock, cfg.Chat.PollInterval, logger)
		},
		Config: cfg.Chat,
		Theme:  ui.DefaultTheme,
		Keys:   ui.DefaultKeyMap,
		Logger: logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

func loadConfig(flagValue string) (*config.Config, error) {
	path := config.Path(flagValue)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadSession(flagValue string) *session.Session {
	path := flagValue
	if path == "" {
		path = session.FilePath()
	}
	loaded, err := session.LoadFrom(path)
	if err != nil {
		return &session.Session{Username: "guest"}
	}
	return loaded
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, `Tableside — terminal client for the restaurant service.

Browse the menu and tables without logging in. With a saved session,
place orders, book a table, and chat with the ordering assistant; the
assistant's proposed orders appear in the chat sidebar for approval.

Keys: tab cycles panes, enter adds/selects, 1/2/3 pick a booking
duration, b books, n edits the phone number, p places the order, c
opens the chat sidebar, q quits.

Usage:
  tableside [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// fanoutHandler duplicates each record to every wrapped handler.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range f {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range f {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make(fanoutHandler, len(f))
	for index, handler := range f {
		wrapped[index] = handler.WithAttrs(attrs)
	}
	return wrapped
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	wrapped := make(fanoutHandler, len(f))
	for index, handler := range f {
		wrapped[index] = handler.WithGroup(name)
	}
	return wrapped
}

// openFileLogHandler opens path for append and returns a JSON handler
// writing to it at debug level.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}
