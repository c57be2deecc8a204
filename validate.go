package stockledger

import "fmt"

// balanceTolerance absorbs decimal noise from quantity arithmetic.
// Differences at or above it are real accounting errors.
var balanceTolerance = ParseQuantityOrPanic("0.01")

// ParseQuantityOrPanic is ParseQuantity for constants known to be
// valid.
func ParseQuantityOrPanic(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

// ValidationError is a hard accounting violation in a ledger row.
type ValidationError struct {
	Location string   `json:"location"`
	Period   Date     `json:"period"`
	Check    string   `json:"check"`
	Expected Quantity `json:"expected"`
	Actual   Quantity `json:"actual"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s: expected %s, got %s", e.Location, e.Period, e.Check, e.Expected, e.Actual)
}

// ValidationWarning flags a suspicious but not provably wrong row.
type ValidationWarning struct {
	Location string `json:"location"`
	Period   Date   `json:"period"`
	Detail   string `json:"detail"`
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Location, w.Period, w.Detail)
}

// ValidationReport is the outcome of checking a ledger's internal
// consistency.
type ValidationReport struct {
	RowsChecked int                 `json:"rows_checked"`
	Locations   int                 `json:"locations"`
	Errors      []ValidationError   `json:"errors,omitempty"`
	Warnings    []ValidationWarning `json:"warnings,omitempty"`
}

// Passed reports whether the ledger has no hard errors. Warnings do
// not fail a run.
func (r ValidationReport) Passed() bool { return len(r.Errors) == 0 }

// ValidateLedger checks every row of a ledger against the stock
// accounting identities:
//
//   - row balance: Opening + Inbound - Outbound = Closing
//   - continuity: a period's Opening equals the previous period's
//     Closing for the same location
//   - aggregate balance: a location's total Inbound minus total
//     Outbound equals its final Closing
//
// All three are hard errors. A negative Closing only warns, since a
// location can legitimately show debt when source data is incomplete.
// Rows must be sorted as BuildLedger produces them.
func ValidateLedger(rows []LedgerRow) ValidationReport {
	report := ValidationReport{RowsChecked: len(rows)}

	type tally struct {
		in, out, closing Quantity
	}
	totals := make(map[string]*tally)
	var order []string

	var prev *LedgerRow
	for i := range rows {
		row := &rows[i]

		want := row.Opening.Add(row.Inbound).Sub(row.Outbound)
		if diff := want.Sub(row.Closing).Abs(); !diff.LessThan(balanceTolerance) {
			report.Errors = append(report.Errors, ValidationError{
				Location: row.Location, Period: row.Period,
				Check: "row balance", Expected: want, Actual: row.Closing,
			})
		}

		if prev != nil && prev.Location == row.Location {
			if diff := prev.Closing.Sub(row.Opening).Abs(); !diff.LessThan(balanceTolerance) {
				report.Errors = append(report.Errors, ValidationError{
					Location: row.Location, Period: row.Period,
					Check: "opening continuity", Expected: prev.Closing, Actual: row.Opening,
				})
			}
		}

		if row.Closing.IsNegative() {
			report.Warnings = append(report.Warnings, ValidationWarning{
				Location: row.Location, Period: row.Period,
				Detail: fmt.Sprintf("negative closing stock %s", row.Closing),
			})
		}

		t := totals[row.Location]
		if t == nil {
			t = &tally{}
			totals[row.Location] = t
			order = append(order, row.Location)
		}
		t.in = t.in.Add(row.Inbound)
		t.out = t.out.Add(row.Outbound)
		t.closing = row.Closing
		prev = row
	}
	report.Locations = len(totals)

	for _, loc := range order {
		t := totals[loc]
		want := t.in.Sub(t.out)
		if diff := want.Sub(t.closing).Abs(); !diff.LessThan(balanceTolerance) {
			report.Errors = append(report.Errors, ValidationError{
				Location: loc,
				Check:    "aggregate balance", Expected: want, Actual: t.closing,
			})
		}
	}
	return report
}
