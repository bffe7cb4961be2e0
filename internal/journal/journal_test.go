// ABOUTME: Tests for the categorized activity journal
// ABOUTME: Covers append, per-category clear, formatted rendering, hub mirroring

package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorman-bot/doorman/internal/hub"
)

// recordingNotifier captures broadcasts for assertions.
type recordingNotifier struct {
	sent []hub.Notification
}

func (r *recordingNotifier) Broadcast(n hub.Notification) {
	r.sent = append(r.sent, n)
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestJournal_AppendAndRender(t *testing.T) {
	j := New(nil, nil)
	j.now = fixedClock()

	j.Append(CategoryDebugLog, "user alice logged in")
	j.Append(CategoryChat, "hello there")
	j.Append(CategoryDebugLog, "second")

	var lines []string
	for line := range j.RenderFormatted(CategoryDebugLog) {
		lines = append(lines, line)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "2024-05-01 12:30:00 [LOG] user alice logged in", lines[0])
	assert.Equal(t, "2024-05-01 12:30:00 [LOG] second", lines[1])
}

func TestJournal_RenderIsRestartable(t *testing.T) {
	j := New(nil, nil)
	j.Append(CategoryChat, "one")
	j.Append(CategoryChat, "two")

	seq := j.RenderFormatted(CategoryChat)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)
}

func TestJournal_RenderStopsEarly(t *testing.T) {
	j := New(nil, nil)
	j.Append(CategoryChat, "one")
	j.Append(CategoryChat, "two")
	j.Append(CategoryChat, "three")

	seen := 0
	for range j.RenderFormatted(CategoryChat) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestJournal_ClearRemovesOnlyGivenCategories(t *testing.T) {
	j := New(nil, nil)
	j.Append(CategoryDebugLog, "debug")
	j.Append(CategoryDebugError, "boom")
	j.Append(CategoryChat, "chat stays")
	j.Append(CategoryServerLog, "server stays")

	j.Clear(CategoryDebugLog, CategoryDebugError)

	assert.Equal(t, 0, j.Len(CategoryDebugLog))
	assert.Equal(t, 0, j.Len(CategoryDebugError))
	assert.Equal(t, 1, j.Len(CategoryChat))
	assert.Equal(t, 1, j.Len(CategoryServerLog))
}

func TestJournal_DebugAppendsNotifyObservers(t *testing.T) {
	rec := &recordingNotifier{}
	j := New(nil, rec)

	j.Append(CategoryDebugLog, "plain")
	j.Append(CategoryDebugError, "boom")
	j.Append(CategoryChat, "chat is not mirrored")
	j.Append(CategoryServerLog, "neither is server")

	require.Len(t, rec.sent, 2)
	assert.Equal(t, hub.KindLog, rec.sent[0].Type)
	assert.Equal(t, "plain", rec.sent[0].Message)
	assert.Equal(t, "ERROR: boom", rec.sent[1].Message)
}

func TestJournal_AppendfFormats(t *testing.T) {
	j := New(nil, nil)
	j.Appendf(CategoryDebugLog, "user %s logged %s", "alice", "in")

	var lines []string
	for line := range j.RenderFormatted(CategoryDebugLog) {
		lines = append(lines, line)
	}
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "user alice logged in")
}
