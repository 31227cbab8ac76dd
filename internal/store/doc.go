// Package store persists musician profiles and band requests in SQLite.
//
// The Store owns a single connection pool opened at process start with WAL
// journaling and a busy timeout, plus bounded retry on SQLITE_BUSY. Request
// ids are strictly increasing. Claim is the one atomicity-critical operation:
// a single conditional UPDATE closes a request in favor of exactly one
// musician no matter how many acceptances race.
package store
