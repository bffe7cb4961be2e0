// ABOUTME: Matrix-backed implementation of the session.Client capability
// ABOUTME: Maps sync events to session events and commands to Matrix API calls

package matrix

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/doorman-bot/doorman/internal/dedupe"
	"github.com/doorman-bot/doorman/internal/session"
)

const (
	// eventBufferSize is the session event channel buffer. A full buffer
	// drops the event rather than stalling the sync loop.
	eventBufferSize = 64

	// syncRetryDelay is the pause before restarting a failed sync loop.
	syncRetryDelay = 5 * time.Second

	// dedupeTTL is how long delivered event IDs are remembered. Sync
	// restarts can redeliver recent events.
	dedupeTTL = 10 * time.Minute
)

// Options configures the Matrix session client.
type Options struct {
	Homeserver  string
	UserID      string
	AccessToken string
}

// Client implements session.Client over a Matrix homeserver. Room messages
// become message events, invites to direct rooms become friendship events,
// and the group-invite procedure maps to room member invites.
type Client struct {
	matrix *mautrix.Client
	userID id.UserID
	events chan session.Event
	seen   *dedupe.Cache
	logger *slog.Logger

	// startedAt filters out backfilled events from the initial sync.
	startedAt time.Time

	syncCancel context.CancelFunc
	stopOnce   sync.Once

	// closeMu guards events against close: emit sends under the read lock,
	// Stop closes under the write lock. Sync handlers can still be in
	// flight when Stop runs, so an unguarded close would panic a send.
	closeMu sync.RWMutex
	closed  bool

	// dms caches direct room IDs per contact.
	dmMu sync.Mutex
	dms  map[id.UserID]id.RoomID
}

// New creates a Matrix session client. Pass nil logger for default.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mc, err := mautrix.NewClient(opts.Homeserver, id.UserID(opts.UserID), opts.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return &Client{
		matrix: mc,
		userID: id.UserID(opts.UserID),
		events: make(chan session.Event, eventBufferSize),
		seen:   dedupe.New(dedupeTTL),
		logger: logger.With("component", "matrix"),
		dms:    make(map[id.UserID]id.RoomID),
	}, nil
}

// Events returns the inbound session event stream.
func (c *Client) Events() <-chan session.Event {
	return c.events
}

// Start verifies credentials, registers sync handlers, and begins the sync
// loop. A login event is delivered once the identity is confirmed.
func (c *Client) Start(ctx context.Context) error {
	whoami, err := c.matrix.Whoami(ctx)
	if err != nil {
		return fmt.Errorf("verifying matrix credentials: %w", err)
	}
	c.userID = whoami.UserID
	c.startedAt = time.Now()

	syncer, ok := c.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", c.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, c.handleMessageEvent)
	syncer.OnEventType(event.StateMember, c.handleMemberEvent)

	var syncCtx context.Context
	syncCtx, c.syncCancel = context.WithCancel(ctx)
	go c.syncLoop(syncCtx)

	c.emit(session.Event{
		Kind: session.EventKindLogin,
		User: c.contact(ctx, c.userID),
	})

	c.logger.Info("matrix session started", "user_id", c.userID.String())
	return nil
}

// syncLoop keeps the sync running, surfacing failures as recoverable error
// events and retrying after a pause.
func (c *Client) syncLoop(ctx context.Context) {
	for {
		err := c.matrix.SyncWithContext(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.emit(session.Event{Kind: session.EventKindError, Err: fmt.Errorf("matrix sync: %w", err)})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(syncRetryDelay):
		}
	}
}

// Stop cancels the sync loop and closes the event stream. Handlers still in
// flight see the closed flag and drop their events instead of sending.
func (c *Client) Stop(context.Context) error {
	c.stopOnce.Do(func() {
		if c.syncCancel != nil {
			c.syncCancel()
		}
		c.seen.Close()

		c.closeMu.Lock()
		c.closed = true
		close(c.events)
		c.closeMu.Unlock()
	})
	return nil
}

// Logout invalidates the access token and delivers a logout event. The sync
// loop is cancelled since the token is gone.
func (c *Client) Logout(ctx context.Context) error {
	self := c.contact(ctx, c.userID)

	if _, err := c.matrix.Logout(ctx); err != nil {
		return fmt.Errorf("matrix logout: %w", err)
	}
	if c.syncCancel != nil {
		c.syncCancel()
	}

	c.emit(session.Event{Kind: session.EventKindLogout, User: self})
	return nil
}

// FindRoom looks up a joined room by display name. Returns (nil, nil) when
// no joined room has that name.
func (c *Client) FindRoom(ctx context.Context, name string) (session.Room, error) {
	joined, err := c.matrix.JoinedRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing joined rooms: %w", err)
	}

	for _, roomID := range joined.JoinedRooms {
		var content event.RoomNameEventContent
		if err := c.matrix.StateEvent(ctx, roomID, event.StateRoomName, "", &content); err != nil {
			// Rooms without a name event are not invite targets.
			continue
		}
		if content.Name == name {
			return &room{client: c, id: roomID, name: name}, nil
		}
	}
	return nil, nil
}

func (c *Client) handleMessageEvent(ctx context.Context, evt *event.Event) {
	if evt.Sender == c.userID {
		return
	}
	if time.UnixMilli(evt.Timestamp).Before(c.startedAt) {
		return
	}
	if c.seen.Seen(evt.ID.String()) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	c.emit(session.Event{
		Kind: session.EventKindMessage,
		Message: &message{
			typ:    mapMessageType(content.MsgType),
			sender: c.contact(ctx, evt.Sender),
			text:   content.Body,
		},
	})
}

// handleMemberEvent turns an invite to a direct room into a friendship
// event: joining the room is the Matrix equivalent of accepting a contact.
func (c *Client) handleMemberEvent(ctx context.Context, evt *event.Event) {
	if !isDirectInviteFor(evt, c.userID) {
		return
	}
	if c.seen.Seen(evt.ID.String()) {
		return
	}

	c.emit(session.Event{
		Kind: session.EventKindFriendship,
		Friendship: &friendship{
			client:  c,
			roomID:  evt.RoomID,
			inviter: c.contact(ctx, evt.Sender),
		},
	})
}

// isDirectInviteFor reports whether evt invites self into a direct room.
func isDirectInviteFor(evt *event.Event, self id.UserID) bool {
	if evt.GetStateKey() != self.String() {
		return false
	}
	content := evt.Content.AsMember()
	if content == nil {
		return false
	}
	return content.Membership == event.MembershipInvite && content.IsDirect
}

// mapMessageType converts a Matrix msgtype to the session taxonomy.
func mapMessageType(t event.MessageType) session.MessageType {
	switch t {
	case event.MsgText, event.MsgNotice, event.MsgEmote:
		return session.MessageTypeText
	case event.MsgImage:
		return session.MessageTypeImage
	case event.MsgAudio:
		return session.MessageTypeAudio
	case event.MsgVideo:
		return session.MessageTypeVideo
	case event.MsgFile:
		return session.MessageTypeAttachment
	default:
		return session.MessageTypeUnknown
	}
}

// emit delivers a session event without ever blocking the sync loop. After
// Stop the event is dropped; the send must never race the channel close.
func (c *Client) emit(ev session.Event) {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()

	if c.closed {
		c.logger.Debug("dropped session event after stop", "kind", int(ev.Kind))
		return
	}

	select {
	case c.events <- ev:
	default:
		c.logger.Warn("dropped session event for slow consumer", "kind", int(ev.Kind))
	}
}

// contact builds a session contact, resolving the display name with a
// localpart fallback.
func (c *Client) contact(ctx context.Context, userID id.UserID) *contact {
	name := userID.Localpart()
	if profile, err := c.matrix.GetProfile(ctx, userID); err == nil && profile.DisplayName != "" {
		name = profile.DisplayName
	}
	return &contact{client: c, userID: userID, name: name}
}

// dmRoom returns a direct room shared with the contact, creating one when
// none is cached.
func (c *Client) dmRoom(ctx context.Context, userID id.UserID) (id.RoomID, error) {
	c.dmMu.Lock()
	roomID, ok := c.dms[userID]
	c.dmMu.Unlock()
	if ok {
		return roomID, nil
	}

	resp, err := c.matrix.CreateRoom(ctx, &mautrix.ReqCreateRoom{
		Invite:   []id.UserID{userID},
		IsDirect: true,
		Preset:   "trusted_private_chat",
	})
	if err != nil {
		return "", fmt.Errorf("creating direct room with %s: %w", userID, err)
	}

	c.rememberDM(userID, resp.RoomID)
	return resp.RoomID, nil
}

func (c *Client) rememberDM(userID id.UserID, roomID id.RoomID) {
	c.dmMu.Lock()
	c.dms[userID] = roomID
	c.dmMu.Unlock()
}
