// ABOUTME: Session Client capability consumed by the bot's decision core
// ABOUTME: Tagged-variant events plus contact/message/room/friendship interfaces

package session

import "context"

// ScanStatus is the state of a QR login challenge.
type ScanStatus int

const (
	ScanStatusUnknown ScanStatus = iota
	// ScanStatusWaiting means the challenge is displayed and not yet consumed;
	// only this status triggers QR rendering.
	ScanStatusWaiting
	ScanStatusScanned
	ScanStatusConfirmed
	ScanStatusExpired
)

// MessageType tags a message's payload kind. Only text messages are acted on.
type MessageType int

const (
	MessageTypeUnknown MessageType = iota
	MessageTypeText
	MessageTypeImage
	MessageTypeAudio
	MessageTypeVideo
	MessageTypeAttachment
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "text"
	case MessageTypeImage:
		return "image"
	case MessageTypeAudio:
		return "audio"
	case MessageTypeVideo:
		return "video"
	case MessageTypeAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Contact is an identity on the messaging platform that can receive text.
type Contact interface {
	Name() string
	SendText(ctx context.Context, text string) error
}

// Message is an inbound message event payload.
type Message interface {
	Type() MessageType
	Sender() Contact
	Text() string
}

// Room is a group chat that members can be added to and messaged.
type Room interface {
	Name() string
	Add(ctx context.Context, contact Contact) error
	SendText(ctx context.Context, text string) error
}

// Friendship is a pending friend/contact request.
type Friendship interface {
	Contact() Contact
	Accept(ctx context.Context) error
}

// EventKind discriminates the Event variant.
type EventKind int

const (
	EventKindUnknown EventKind = iota
	EventKindScan
	EventKindLogin
	EventKindLogout
	EventKindError
	EventKindMessage
	EventKindFriendship
)

// Event is one inbound session event. Exactly the fields for its Kind are
// set; the rest are zero. A tagged variant consumed by a single handler loop
// keeps ordering explicit, unlike ambient callback registration.
type Event struct {
	Kind EventKind

	// EventKindScan
	ScanCode   string
	ScanStatus ScanStatus

	// EventKindLogin, EventKindLogout
	User Contact

	// EventKindError
	Err error

	// EventKindMessage
	Message Message

	// EventKindFriendship
	Friendship Friendship
}

// Client is the external component owning the platform connection and
// object model. Implementations deliver events on a single channel, closed
// when the connection ends.
type Client interface {
	// Events returns the inbound event stream. The channel is closed when
	// the client stops.
	Events() <-chan Event

	// Start connects and begins delivering events. It returns once the
	// connection is established; delivery continues until Stop or ctx end.
	Start(ctx context.Context) error

	// Stop disconnects and closes the event stream.
	Stop(ctx context.Context) error

	// Logout ends the logged-in session without stopping the client; a
	// logout event is delivered through the stream.
	Logout(ctx context.Context) error

	// FindRoom looks up a group chat by display name. Returns (nil, nil)
	// when no room matches.
	FindRoom(ctx context.Context, name string) (Room, error)
}
