// ABOUTME: Append-only categorized journal of bot activity with timestamped entries
// ABOUTME: Mirrors debug entries to the operator log stream and the broadcast hub

package journal

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/doorman-bot/doorman/internal/hub"
)

// Category classifies a journal entry.
type Category string

const (
	CategoryChat        Category = "chat"
	CategoryDebugLog    Category = "debug-log"
	CategoryDebugError  Category = "debug-error"
	CategoryServerLog   Category = "server-log"
	CategoryServerError Category = "server-error"
)

// label returns the short tag used when rendering entries for the operator.
func (c Category) label() string {
	switch c {
	case CategoryChat:
		return "CHAT"
	case CategoryDebugLog:
		return "LOG"
	case CategoryDebugError:
		return "ERROR"
	case CategoryServerLog:
		return "SERVER"
	case CategoryServerError:
		return "SERVER-ERROR"
	default:
		return string(c)
	}
}

// isError reports whether entries of this category go to the error stream.
func (c Category) isError() bool {
	return c == CategoryDebugError || c == CategoryServerError
}

// Entry is one immutable journal record.
type Entry struct {
	Category  Category
	Text      string
	Timestamp time.Time
}

// timestampLayout renders entries in a fixed reference zone (UTC) so
// operator-facing logs are deterministic across deployments.
const timestampLayout = "2006-01-02 15:04:05"

// Notifier receives a notification for every debug-category append. The
// broadcast hub satisfies this; tests substitute a recorder.
type Notifier interface {
	Broadcast(hub.Notification)
}

// Journal is the in-memory activity record. Appends additionally mirror the
// entry to the structured logger, and debug-category appends push a "log"
// notification to live observers.
type Journal struct {
	mu       sync.Mutex
	entries  []Entry
	logger   *slog.Logger
	notifier Notifier
	now      func() time.Time
}

// New creates a journal. Pass nil logger for default; notifier may be nil
// when no observer surface is wired.
func New(logger *slog.Logger, notifier Notifier) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		logger:   logger.With("component", "journal"),
		notifier: notifier,
		now:      time.Now,
	}
}

// Append records an entry with the current timestamp. The entry is mirrored
// to the structured logger (error stream for error categories), and debug
// entries are pushed to observers as a "log" notification, error entries
// carrying an ERROR prefix.
func (j *Journal) Append(category Category, text string) {
	j.mu.Lock()
	j.entries = append(j.entries, Entry{
		Category:  category,
		Text:      text,
		Timestamp: j.now(),
	})
	j.mu.Unlock()

	if category.isError() {
		j.logger.Error(text, "category", string(category))
	} else {
		j.logger.Info(text, "category", string(category))
	}

	if j.notifier == nil {
		return
	}
	switch category {
	case CategoryDebugLog:
		j.notifier.Broadcast(hub.Notification{Type: hub.KindLog, Message: text})
	case CategoryDebugError:
		j.notifier.Broadcast(hub.Notification{Type: hub.KindLog, Message: "ERROR: " + text})
	}
}

// Appendf is Append with fmt formatting.
func (j *Journal) Appendf(category Category, format string, args ...any) {
	j.Append(category, fmt.Sprintf(format, args...))
}

// Clear removes all entries whose category is in the given set. Used on
// logout to drop the debug log while keeping chat and server history.
func (j *Journal) Clear(categories ...Category) {
	drop := make(map[Category]bool, len(categories))
	for _, c := range categories {
		drop[c] = true
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	kept := j.entries[:0]
	for _, e := range j.entries {
		if !drop[e.Category] {
			kept = append(kept, e)
		}
	}
	j.entries = kept
}

// Len reports the number of entries currently held for the category.
func (j *Journal) Len(category Category) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := 0
	for _, e := range j.entries {
		if e.Category == category {
			n++
		}
	}
	return n
}

// RenderFormatted returns a restartable sequence of human-readable lines for
// the category, one per entry in insertion order:
//
//	2024-05-01 12:30:00 [LOG] user alice logged in
//
// The sequence iterates over a snapshot taken when iteration starts.
func (j *Journal) RenderFormatted(category Category) iter.Seq[string] {
	return func(yield func(string) bool) {
		j.mu.Lock()
		snapshot := make([]Entry, 0, len(j.entries))
		for _, e := range j.entries {
			if e.Category == category {
				snapshot = append(snapshot, e)
			}
		}
		j.mu.Unlock()

		for _, e := range snapshot {
			line := fmt.Sprintf("%s [%s] %s",
				e.Timestamp.UTC().Format(timestampLayout), e.Category.label(), e.Text)
			if !yield(line) {
				return
			}
		}
	}
}
