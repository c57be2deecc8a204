// Package stockledger turns heterogeneous warehouse movement records
// into a trustworthy, double-entry stock ledger per location.
//
// The engine is a pure batch computation working in five stages:
//   - Canonicalizer: maps raw free-text location and column labels to a
//     fixed vocabulary of warehouses and delivery sites via ordered
//     pattern rules.
//   - Extractor: reshapes one raw record (one row, many date-valued
//     location columns) into canonical MovementEvents.
//   - Classifier: derives directional ENTRY/EXIT transaction pairs from
//     each case's ordered movement history, distinguishing warehouse
//     transfers from final deliveries to a site.
//   - Ledger: folds classified transactions into per-location,
//     per-period opening/inbound/outbound/closing rows, carrying each
//     closing balance forward as the next period's opening.
//   - Validator: checks balance and continuity invariants, reconciles
//     closing stock against an independent snapshot count, and flags
//     long-dormant cases.
//
// Each run recomputes everything from the source records; there is no
// state carried between runs. A run that finds problems still produces
// the full ledger plus an itemized error and warning report.
//
// This package is the foundational logic of the `hvdcstock` command-line
// tool. File I/O, report formatting and column-name heuristics are
// collaborators around this core, not part of it.
package stockledger
