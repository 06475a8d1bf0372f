// Package ledger tracks historical donation debt and resolves it oldest-first.
//
// A Ledger is built once from a transaction log. Every kept donation becomes a
// record in an arena addressed by DonationID; records are ordered by timestamp
// and that order is the permanent repayment priority. Only Resolve mutates a
// record, and it only ever lowers the remaining amount and advances the status
// unsatisfied -> partially_resolved -> resolved.
//
// Callers never receive pointers into the arena. Queries return snapshot
// values and Resolve returns immutable ResolutionEvents.
package ledger
