// Package diagnose is the batch validator for a graph session. It is the
// single source of truth for lazily validated sessions and a re-derivable
// safety net for eager ones: every report is computed from scratch against
// the current tables and ledger, so it can never drift from them. The cost
// is that polling a very large session very frequently is expensive; that
// trade-off is deliberate.
//
// Each finding carries a severity, a category, the step and field indices
// involved, and a blame list: the ledger links touching those indices,
// ranked so the least-trusted links surface first.
package diagnose
