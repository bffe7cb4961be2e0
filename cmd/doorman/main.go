// ABOUTME: Entry point for the doorman greeter bot
// ABOUTME: Wires config, session client, decision core, console, and operator endpoint

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/doorman-bot/doorman/internal/bot"
	"github.com/doorman-bot/doorman/internal/config"
	"github.com/doorman-bot/doorman/internal/hub"
	"github.com/doorman-bot/doorman/internal/journal"
	"github.com/doorman-bot/doorman/internal/matrix"
	"github.com/doorman-bot/doorman/internal/web"
)

const banner = `
     _
  __| | ___   ___  _ __ _ __ ___   __ _ _ __
 / _' |/ _ \ / _ \| '__| '_ ' _ \ / _' | '_ \
| (_| | (_) | (_) | |  | | | | | | (_| | | | |
 \__,_|\___/ \___/|_|  |_| |_| |_|\__,_|_| |_|
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := config.DefaultPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging.Level)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("Bot name:   %s\n", cfg.Bot.Name)
	green.Print("    ▶ ")
	fmt.Printf("Group:      %s\n", cfg.Bot.GroupName)
	if cfg.HTTP.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Operator:   http://localhost%s\n", cfg.HTTPAddr())
	}
	fmt.Println()

	// All handler sequences hang off this context; a sequence in flight at
	// shutdown is abandoned in place.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := hub.New(cfg.HTTP.Enabled, logger)
	defer h.Close()

	jnl := journal.New(logger, h)
	state := bot.NewState()

	client, err := matrix.New(matrix.Options{
		Homeserver:  cfg.Matrix.Homeserver,
		UserID:      cfg.Matrix.UserID,
		AccessToken: cfg.Matrix.AccessToken,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating session client: %w", err)
	}

	policy := bot.New(client, state, jnl, h, bot.Options{
		BotName:     cfg.Bot.Name,
		GroupName:   cfg.Bot.GroupName,
		ActionDelay: cfg.Bot.ActionDelay,
		ConsoleQR:   !cfg.Console.Disabled,
	}, logger)

	if cfg.HTTP.Enabled {
		srv, err := web.NewServer(state, h, client.Logout, logger)
		if err != nil {
			return fmt.Errorf("creating operator endpoint: %w", err)
		}
		go func() {
			if err := srv.Run(ctx, cfg.HTTPAddr()); err != nil {
				jnl.Appendf(journal.CategoryServerError, "operator endpoint: %v", err)
			}
		}()
	}

	if !cfg.Console.Disabled {
		go runConsole(ctx, cancel, client, jnl, logger)
	}

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("starting session client: %w", err)
	}
	defer client.Stop(context.Background())

	jnl.Append(journal.CategoryServerLog, "doorman running")

	if err := policy.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	jnl.Append(journal.CategoryServerLog, "shutting down")
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
