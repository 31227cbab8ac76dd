// Command bandfinder is the CLI client for the bandfinder daemon. It talks
// to the daemon's HTTP API to manage musician profiles and band requests.
package main
