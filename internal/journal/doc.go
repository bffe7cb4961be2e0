// Package journal keeps the append-only, categorized record of bot activity
// shown to operators via the console and the SSE stream.
package journal
