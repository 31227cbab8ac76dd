// Package config loads, normalizes, and validates BandFinder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: data/log directories, the API bind address, classifier
// provider settings, and the Telegram delivery transport.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
