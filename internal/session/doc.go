// Package session defines the capability the bot expects from a messaging
// platform client: a stream of tagged session events plus the contact,
// message, room, and friendship object model.
//
// The bot core consumes only these interfaces; internal/matrix provides the
// production implementation and tests use scripted fakes.
package session
