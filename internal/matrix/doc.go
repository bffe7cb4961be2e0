// Package matrix implements the session.Client capability over a Matrix
// homeserver using mautrix.
//
// Mapping to the session model:
//
//   - room messages      -> message events
//   - direct-room invite -> friendship event (Accept joins the room)
//   - group invite       -> room member invite
//   - contact SendText   -> message into a cached or newly created DM room
//
// Token-based login means no QR challenge exists here; scan events are never
// emitted by this client. Sync failures surface as recoverable error events
// and the loop retries.
package matrix
