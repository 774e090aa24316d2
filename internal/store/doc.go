// Package store owns the persisted configuration document: settings, the
// OAuth token, and the ledger of exported activities.
//
// Callers read through Document or the ledger helpers and change state only
// through Commit. A commit encodes the whole document, writes it to a
// temporary file, fsyncs it, and renames it over the original; the in-memory
// copy changes only after the rename succeeds. A successful Commit is the
// durability point for every state change, which is what lets an interrupted
// export resume safely. Open takes an exclusive lock next to the document so
// two runs never write it at once.
package store
