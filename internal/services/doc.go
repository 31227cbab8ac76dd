// Package services defines shared helpers for the external integrations
// (the Telegram Bot API and the OpenRouter classifier): structured error
// markers plus the Wrap helper that keep failure reporting uniform across
// outbound calls.
package services
