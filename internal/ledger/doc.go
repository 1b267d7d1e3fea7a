// Package ledger keeps a local history of upload attempts in SQLite.
//
// The history is informational: it lets a later session show what was
// already sent, but it is never consulted when selecting entries to upload.
package ledger
