// ABOUTME: Decision core mapping inbound session events to commands and side effects
// ABOUTME: Handles scan/login/logout/error/message/friendship per the bot's business rules

package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/doorman-bot/doorman/internal/hub"
	"github.com/doorman-bot/doorman/internal/journal"
	"github.com/doorman-bot/doorman/internal/qr"
	"github.com/doorman-bot/doorman/internal/session"
)

// The two accepted join keywords. A text message exactly equal to either
// triggers the group-invite procedure.
const (
	joinKeywordA = "进群"
	joinKeywordB = "入群"
)

// DefaultActionDelay is the pause before each step of the friendship-accept
// sequence. Pacing the accept and the welcome avoids tripping the remote
// platform's anti-automation heuristics.
const DefaultActionDelay = 3000 * time.Millisecond

// Options configures the policy.
type Options struct {
	// BotName is the display name used in the friendship welcome message.
	BotName string
	// GroupName is the target group chat for invites. Required.
	GroupName string
	// ActionDelay overrides DefaultActionDelay when positive.
	ActionDelay time.Duration
	// ConsoleQR enables rendering the login challenge to QROutput.
	ConsoleQR bool
	// QROutput receives the terminal QR form. Defaults to os.Stdout.
	QROutput io.Writer
}

// Policy consumes session events, applies the bot's rules, issues session
// client commands, and records journal entries and observer notifications.
type Policy struct {
	client  session.Client
	state   *State
	journal *journal.Journal
	hub     *hub.Hub
	opts    Options
	logger  *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a policy around the given collaborators.
func New(client session.Client, state *State, jnl *journal.Journal, h *hub.Hub, opts Options, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ActionDelay <= 0 {
		opts.ActionDelay = DefaultActionDelay
	}
	if opts.QROutput == nil {
		opts.QROutput = os.Stdout
	}
	return &Policy{
		client:  client,
		state:   state,
		journal: jnl,
		hub:     h,
		opts:    opts,
		logger:  logger.With("component", "policy"),
		sleep:   sleepCtx,
	}
}

// Run consumes the client's event stream until it closes or ctx ends.
// Message and friendship handlers run in their own goroutines so their
// client calls and pacing delays never stall event delivery; a sequence
// in flight at shutdown is abandoned in place.
func (p *Policy) Run(ctx context.Context) error {
	events := p.client.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.dispatch(ctx, ev)
		}
	}
}

func (p *Policy) dispatch(ctx context.Context, ev session.Event) {
	switch ev.Kind {
	case session.EventKindScan:
		p.handleScan(ev.ScanCode, ev.ScanStatus)
	case session.EventKindLogin:
		p.handleLogin(ev.User)
	case session.EventKindLogout:
		p.handleLogout(ev.User)
	case session.EventKindError:
		p.handleError(ev.Err)
	case session.EventKindMessage:
		go p.handleMessage(ctx, ev.Message)
	case session.EventKindFriendship:
		go p.handleFriendship(ctx, ev.Friendship)
	default:
		p.logger.Warn("unknown session event", "kind", int(ev.Kind))
	}
}

// handleScan reacts to a QR login challenge. Only a waiting challenge is
// rendered; scanned/confirmed/expired updates are ignored.
func (p *Policy) handleScan(code string, status session.ScanStatus) {
	if status != session.ScanStatusWaiting {
		return
	}

	svg, err := qr.SVG(code)
	if err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "rendering qr challenge: %v", err)
		return
	}
	p.state.setQRSVG(svg)
	p.hub.Broadcast(hub.Notification{Type: hub.KindQRCode, Message: svg})

	if p.opts.ConsoleQR {
		if err := qr.WriteTerminal(p.opts.QROutput, code); err != nil {
			p.logger.Warn("terminal qr render failed", "error", err)
		}
	}

	p.journal.Appendf(journal.CategoryDebugLog, "scan qr code to log in: %s", code)
}

func (p *Policy) handleLogin(user session.Contact) {
	name := contactName(user)
	p.state.setLoggedIn(name)
	p.journal.Appendf(journal.CategoryDebugLog, "user %s logged in", name)
	p.hub.Broadcast(hub.Notification{Type: hub.KindLogin, Message: name})
}

func (p *Policy) handleLogout(user session.Contact) {
	name := contactName(user)
	p.state.clearLoggedIn()
	p.journal.Clear(journal.CategoryDebugLog, journal.CategoryDebugError)
	p.journal.Appendf(journal.CategoryDebugLog, "user %s logged out", name)
	p.hub.Broadcast(hub.Notification{Type: hub.KindLogout, Message: name})
}

// handleError records a recoverable session error. The session continues.
func (p *Policy) handleError(err error) {
	p.journal.Appendf(journal.CategoryDebugError, "session error: %v", err)
}

// handleMessage logs the message and runs the group-invite procedure when
// the text is exactly a join keyword.
func (p *Policy) handleMessage(ctx context.Context, msg session.Message) {
	if msg == nil {
		return
	}
	sender := contactName(msg.Sender())
	p.journal.Appendf(journal.CategoryChat, "message type: %s", msg.Type())
	p.journal.Appendf(journal.CategoryChat, "message sender: %s", sender)

	if msg.Type() != session.MessageTypeText {
		return
	}

	text := msg.Text()
	p.journal.Appendf(journal.CategoryChat, "received message: %s", text)

	if text != joinKeywordA && text != joinKeywordB {
		return
	}
	p.inviteToGroup(ctx, msg.Sender())
}

// inviteToGroup looks up the configured group and adds the sender. A failed
// lookup is a logged no-op for this message; there is no retry.
func (p *Policy) inviteToGroup(ctx context.Context, contact session.Contact) {
	name := contactName(contact)

	room, err := p.client.FindRoom(ctx, p.opts.GroupName)
	if err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "looking up group %s: %v", p.opts.GroupName, err)
		return
	}
	if room == nil {
		p.journal.Appendf(journal.CategoryDebugLog, "target group %s not found", p.opts.GroupName)
		return
	}

	if err := room.Add(ctx, contact); err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "adding %s to group %s: %v", name, room.Name(), err)
		return
	}
	p.journal.Appendf(journal.CategoryDebugLog, "invited %s to group %s", name, room.Name())

	if err := room.SendText(ctx, fmt.Sprintf("欢迎 %s 加入群聊！", name)); err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "welcoming %s in group %s: %v", name, room.Name(), err)
	}
}

// handleFriendship accepts a friend request and greets the new contact,
// pausing before each step. The sequence is not cancelled mid-flight on
// shutdown; it is simply never resumed.
func (p *Policy) handleFriendship(ctx context.Context, req session.Friendship) {
	if req == nil {
		return
	}
	name := contactName(req.Contact())
	p.journal.Appendf(journal.CategoryDebugLog, "friend request from %s", name)

	p.sleep(ctx, p.opts.ActionDelay)
	if err := req.Accept(ctx); err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "accepting friend request from %s: %v", name, err)
		return
	}
	p.journal.Appendf(journal.CategoryDebugLog, "accepted friend request from %s", name)

	p.sleep(ctx, p.opts.ActionDelay)
	welcome := fmt.Sprintf("你好，我是%s，回复“进群”我将邀请你加入“%s”。", p.opts.BotName, p.opts.GroupName)
	if err := req.Contact().SendText(ctx, welcome); err != nil {
		p.journal.Appendf(journal.CategoryDebugError, "sending welcome to %s: %v", name, err)
		return
	}
	p.journal.Appendf(journal.CategoryDebugLog, "sent welcome message to %s", name)
}

func contactName(c session.Contact) string {
	if c == nil {
		return ""
	}
	return c.Name()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
