package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hvdc-project/stockledger"
)

// printMarkdown renders markdown to the terminal. If rendering fails
// the raw markdown is printed as-is; the content matters more than the
// styling.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// summaryMarkdown renders the headline numbers of a batch run.
func summaryMarkdown(res stockledger.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Stock Analysis %s\n\n", res.RunID)
	fmt.Fprintf(&b, "- Records: %d (%d rejected, %d cells skipped)\n",
		res.Extract.Records, res.Extract.Rejected, res.Extract.CellsSkipped)
	fmt.Fprintf(&b, "- Movements: %d\n", len(res.Extract.Events))
	fmt.Fprintf(&b, "- Transactions: %d\n", len(res.Transactions))
	fmt.Fprintf(&b, "- Ledger rows: %d over %d locations\n", res.Report.RowsChecked, res.Report.Locations)
	if len(res.Anomalies) > 0 {
		fmt.Fprintf(&b, "- Anomalies: %d\n", len(res.Anomalies))
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(&b, "- Failed cases: %d\n", len(res.Failures))
	}
	b.WriteString("\n")
	b.WriteString(validationMarkdown(res.Report))
	if len(res.Anomalies) > 0 {
		b.WriteString(anomaliesMarkdown(res.Anomalies))
	}
	return b.String()
}

func validationMarkdown(report stockledger.ValidationReport) string {
	var b strings.Builder
	b.WriteString("## Validation\n\n")
	if report.Passed() {
		fmt.Fprintf(&b, "All %d rows balance.\n\n", report.RowsChecked)
	} else {
		fmt.Fprintf(&b, "%d error(s) found.\n\n", len(report.Errors))
		b.WriteString("| Location | Period | Check | Expected | Actual |\n")
		b.WriteString("|---|---|---|---:|---:|\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", e.Location, e.Period, e.Check, e.Expected, e.Actual)
		}
		b.WriteString("\n")
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "- warning: %s\n", w)
	}
	if len(report.Warnings) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func anomaliesMarkdown(anomalies []stockledger.Anomaly) string {
	var b strings.Builder
	b.WriteString("## Anomalies\n\n")
	b.WriteString("| Case | Date | Location | Detail |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, a := range anomalies {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", a.CaseID, a.Date, a.Location, a.Detail)
	}
	b.WriteString("\n")
	return b.String()
}

func ledgerMarkdown(rows []stockledger.LedgerRow, bucket stockledger.Period) string {
	var b strings.Builder
	b.WriteString("## Stock Ledger\n\n")
	b.WriteString("| Location | Period | Opening | In | Transfer Out | Final Out | Closing |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			r.Location, bucket.Key(r.Period), r.Opening, r.Inbound, r.TransferOut, r.FinalOut, r.Closing)
	}
	b.WriteString("\n")
	return b.String()
}

func reconcileMarkdown(records []stockledger.ReconciliationRecord) string {
	var b strings.Builder
	b.WriteString("## Reconciliation\n\n")
	b.WriteString("| Location | Ledger | Snapshot | Delta | Status | Severity |\n")
	b.WriteString("|---|---:|---:|---:|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Location, r.LedgerClosing, r.SnapshotQty, r.Delta, r.Status, r.Severity)
	}
	attention := stockledger.Attention(records)
	fmt.Fprintf(&b, "\n%d of %d locations need attention.\n\n", len(attention), len(records))
	return b.String()
}

func dormantMarkdown(dormant []stockledger.DormantCase, asOf stockledger.Date, thresholdDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Dormant Stock as of %s (idle >= %d days)\n\n", asOf, thresholdDays)
	if len(dormant) == 0 {
		b.WriteString("No dormant cases.\n\n")
		return b.String()
	}
	b.WriteString("| Case | Location | Last Move | Days Idle | Qty |\n")
	b.WriteString("|---|---|---|---:|---:|\n")
	for _, d := range dormant {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n", d.CaseID, d.Location, d.LastMove, d.DaysIdle, d.Qty)
	}
	b.WriteString("\n")
	return b.String()
}
