// Package web serves the optional operator HTTP endpoint: a status page
// with a live SSE subscriber, the current QR challenge as SVG, and a logout
// trigger. It only reads session state and relays hub notifications; all
// decisions stay in the bot core.
package web
