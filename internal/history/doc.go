// Package history records conversion runs in a small SQLite ledger.
//
// The ledger is operational metadata only: which bundle was converted, when,
// into which directory, and with what outcome. The conversion pipeline writes
// to it after a run finishes and never reads it back, so deleting the database
// has no effect on produced artifacts.
package history
