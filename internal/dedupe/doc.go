// Package dedupe provides a time-based cache of seen event IDs so the
// session adapter processes each redelivered sync event only once.
package dedupe
