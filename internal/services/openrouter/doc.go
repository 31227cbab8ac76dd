// Package openrouter provides a thin client for OpenRouter-compatible chat
// completion endpoints, used to classify band request descriptions into genre
// labels. Callers should treat failures as degradable: the classify package
// wraps this client and falls back to keyword matching when a call fails.
package openrouter
