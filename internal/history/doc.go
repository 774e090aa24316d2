// Package history keeps an optional SQLite journal of export runs.
//
// Each run gets a UUID, every reconciled activity is stored as an outcome row,
// and the final counts are written when the run ends. The journal is
// informational: the ledger in the configuration document remains the only
// record of which activities are done.
package history
