package stockledger

import "sort"

// ReconcileStatus is the verdict of comparing a ledger balance with an
// observed snapshot quantity.
type ReconcileStatus string

const (
	StatusOK        ReconcileStatus = "OK"
	StatusAttention ReconcileStatus = "ATTENTION"
)

// Severity grades how far a reconciliation delta drifted.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Drift thresholds, in absolute quantity. Within okDelta the physical
// count and the ledger are considered to agree.
var (
	okDelta   = Q(5)
	highDelta = Q(10)
)

// ReconciliationRecord compares one location's computed closing stock
// with an independent physical snapshot.
type ReconciliationRecord struct {
	Location      string          `json:"location"`
	LedgerClosing Quantity        `json:"ledger_closing"`
	SnapshotQty   Quantity        `json:"snapshot_qty"`
	Delta         Quantity        `json:"delta"` // snapshot minus ledger
	Status        ReconcileStatus `json:"status"`
	Severity      Severity        `json:"severity"`
}

// Reconcile matches ledger closings against a snapshot of observed
// quantities per location. The comparison is a union: a location known
// to only one side still appears, with the missing side counted as
// zero. Records are sorted by location.
func Reconcile(rows []LedgerRow, snapshot map[string]Quantity) []ReconciliationRecord {
	closing := ClosingByLocation(rows)

	locations := make(map[string]bool)
	for loc := range closing {
		locations[loc] = true
	}
	for loc := range snapshot {
		locations[loc] = true
	}
	ordered := make([]string, 0, len(locations))
	for loc := range locations {
		ordered = append(ordered, loc)
	}
	sort.Strings(ordered)

	records := make([]ReconciliationRecord, 0, len(ordered))
	for _, loc := range ordered {
		ledger := closing[loc]    // zero when the ledger never saw it
		observed := snapshot[loc] // zero when the count missed it
		delta := observed.Sub(ledger)

		rec := ReconciliationRecord{
			Location:      loc,
			LedgerClosing: ledger,
			SnapshotQty:   observed,
			Delta:         delta,
			Status:        StatusOK,
			Severity:      SeverityLow,
		}
		abs := delta.Abs()
		if abs.GreaterThan(okDelta) {
			rec.Status = StatusAttention
			rec.Severity = SeverityMedium
			if abs.GreaterThan(highDelta) {
				rec.Severity = SeverityHigh
			}
		}
		records = append(records, rec)
	}
	return records
}

// Attention filters records needing investigation.
func Attention(records []ReconciliationRecord) []ReconciliationRecord {
	var out []ReconciliationRecord
	for _, rec := range records {
		if rec.Status == StatusAttention {
			out = append(out, rec)
		}
	}
	return out
}
