// Package daemon hosts the long-running bandfinder process: it enforces
// single-instance execution with a lock file and serves the HTTP API that the
// CLI and other clients talk to.
package daemon
