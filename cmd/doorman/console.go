// ABOUTME: Stdin command console for operators
// ABOUTME: Supports logs (dump journal), logout, and exit (graceful shutdown)

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/doorman-bot/doorman/internal/journal"
	"github.com/doorman-bot/doorman/internal/session"
)

// dumpOrder is the category order used by the logs command.
var dumpOrder = []journal.Category{
	journal.CategoryChat,
	journal.CategoryDebugLog,
	journal.CategoryDebugError,
	journal.CategoryServerLog,
	journal.CategoryServerError,
}

// runConsole reads line-oriented commands from stdin until ctx ends or
// stdin closes. exit triggers the same graceful shutdown as SIGINT.
func runConsole(ctx context.Context, shutdown context.CancelFunc, client session.Client, jnl *journal.Journal, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "":
		case "logs":
			for _, category := range dumpOrder {
				for line := range jnl.RenderFormatted(category) {
					fmt.Println(line)
				}
			}
		case "logout":
			if err := client.Logout(ctx); err != nil {
				jnl.Appendf(journal.CategoryDebugError, "console logout: %v", err)
			}
		case "exit":
			shutdown()
			return
		default:
			fmt.Println("commands: logs, logout, exit")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Warn("console read failed", "error", err)
	}
}
