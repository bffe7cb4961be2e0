// ABOUTME: Matrix-backed contact, message, room, and friendship objects
// ABOUTME: Thin wrappers translating session capability calls to Matrix API calls

package matrix

import (
	"context"
	"fmt"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/doorman-bot/doorman/internal/session"
)

type contact struct {
	client *Client
	userID id.UserID
	name   string
}

func (c *contact) Name() string { return c.name }

// SendText delivers text to the contact's direct room.
func (c *contact) SendText(ctx context.Context, text string) error {
	roomID, err := c.client.dmRoom(ctx, c.userID)
	if err != nil {
		return err
	}
	if _, err := c.client.matrix.SendText(ctx, roomID, text); err != nil {
		return fmt.Errorf("sending text to %s: %w", c.userID, err)
	}
	return nil
}

type message struct {
	typ    session.MessageType
	sender *contact
	text   string
}

func (m *message) Type() session.MessageType { return m.typ }
func (m *message) Sender() session.Contact   { return m.sender }
func (m *message) Text() string              { return m.text }

type room struct {
	client *Client
	id     id.RoomID
	name   string
}

func (r *room) Name() string { return r.name }

// Add invites the contact into the room. Only Matrix-backed contacts can be
// invited; the session capability never mixes implementations in practice.
func (r *room) Add(ctx context.Context, member session.Contact) error {
	mc, ok := member.(*contact)
	if !ok {
		return fmt.Errorf("cannot invite non-matrix contact %q", member.Name())
	}
	_, err := r.client.matrix.InviteUser(ctx, r.id, &mautrix.ReqInviteUser{UserID: mc.userID})
	if err != nil {
		return fmt.Errorf("inviting %s to %s: %w", mc.userID, r.name, err)
	}
	return nil
}

func (r *room) SendText(ctx context.Context, text string) error {
	if _, err := r.client.matrix.SendText(ctx, r.id, text); err != nil {
		return fmt.Errorf("sending text to room %s: %w", r.name, err)
	}
	return nil
}

// friendship is a pending invite to a direct room. Accepting joins the room.
type friendship struct {
	client  *Client
	roomID  id.RoomID
	inviter *contact
}

func (f *friendship) Contact() session.Contact { return f.inviter }

func (f *friendship) Accept(ctx context.Context) error {
	if _, err := f.client.matrix.JoinRoomByID(ctx, f.roomID); err != nil {
		return fmt.Errorf("joining direct room %s: %w", f.roomID, err)
	}
	// The invite room is now the direct channel to this contact.
	f.client.rememberDM(f.inviter.userID, f.roomID)
	return nil
}
