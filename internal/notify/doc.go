// Package notify delivers matching events to musicians and bands.
//
// The default implementation publishes through the Telegram Bot API using the
// recipient's id as the chat id and gracefully degrades to a no-op when no
// bot token is configured. The coordinator depends only on the Service
// interface, so alternative transports slot in without touching the matching
// flow.
package notify
