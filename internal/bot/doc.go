// Package bot holds the decision core: the session state machine and the
// policy that maps inbound session events to outbound commands.
//
// # State machine
//
// LoggedOut (initial) -> AwaitingScan (a QR challenge issued) -> LoggedIn
// -> back to LoggedOut on logout. A login event always moves to LoggedIn
// regardless of prior state; a logout event always moves to LoggedOut.
//
// # Event handling
//
// The policy consumes the session client's event stream in a single loop:
//
//   - scan: render the waiting challenge (SVG + terminal), store it, notify
//     observers
//   - login/logout: update state, journal, notify observers; logout also
//     clears the debug journal
//   - error: journal only, session continues
//   - message: invite the sender into the configured group when the text is
//     exactly a join keyword
//   - friendship: paced accept-then-welcome sequence
//
// Message and friendship handling run in their own goroutines so platform
// round-trips and pacing delays never block event delivery. Failures inside
// handlers are converted to journal entries, never surfaced to the caller.
package bot
