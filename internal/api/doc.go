// Package api defines the transport-facing payload types shared by the
// daemon's HTTP server and the CLI client, plus the conversions from store
// records into those payloads.
package api
