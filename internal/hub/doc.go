// Package hub provides in-memory fan-out of session notifications to live
// observers (SSE connections). Zero observers is the common case and costs
// a flag check plus a map length check per broadcast.
package hub
