// Package export runs the incremental reconciliation loop.
//
// The Engine walks the remote activity feed in order and, for each activity,
// decides whether to skip it (sport filter or ledger hit), download it, or
// record a per-item failure. A successful download is written to disk and then
// recorded in the ledger; the ledger commit is the only thing that marks an
// activity as done, so an interrupted run resumes where it stopped.
package export
