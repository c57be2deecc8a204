package stockledger

import "testing"

func TestBuildLedgerMonthly(t *testing.T) {
	canon := DefaultCanonicalizer()
	txs := []Transaction{
		{CaseID: "C-1", Date: NewDate(2024, 1, 5), Qty: Q(5), Direction: Entry, Kind: KindIn, Location: "DSV Indoor", Counterparty: "SOURCE"},
		{CaseID: "C-1", Date: NewDate(2024, 2, 10), Qty: Q(5), Direction: Exit, Kind: KindTransferOut, Location: "DSV Indoor", Counterparty: "DSV Outdoor"},
		{CaseID: "C-1", Date: NewDate(2024, 2, 10), Qty: Q(5), Direction: Entry, Kind: KindIn, Location: "DSV Outdoor", Counterparty: "DSV Indoor"},
		{CaseID: "C-1", Date: NewDate(2024, 3, 1), Qty: Q(5), Direction: Exit, Kind: KindFinalOut, Location: "DSV Outdoor", Counterparty: "AGI"},
		{CaseID: "C-1", Date: NewDate(2024, 3, 1), Qty: Q(5), Direction: Entry, Kind: KindIn, Location: "AGI", Counterparty: "DSV Outdoor"},
	}

	rows := BuildLedger(canon, txs, Monthly)
	want := []LedgerRow{
		{Location: "DSV Indoor", Period: NewDate(2024, 1, 1), Opening: Q(0), Inbound: Q(5), TransferOut: Q(0), FinalOut: Q(0), Outbound: Q(0), Closing: Q(5)},
		{Location: "DSV Indoor", Period: NewDate(2024, 2, 1), Opening: Q(5), Inbound: Q(0), TransferOut: Q(5), FinalOut: Q(0), Outbound: Q(5), Closing: Q(0)},
		{Location: "DSV Outdoor", Period: NewDate(2024, 2, 1), Opening: Q(0), Inbound: Q(5), TransferOut: Q(0), FinalOut: Q(0), Outbound: Q(0), Closing: Q(5)},
		{Location: "DSV Outdoor", Period: NewDate(2024, 3, 1), Opening: Q(5), Inbound: Q(0), TransferOut: Q(0), FinalOut: Q(5), Outbound: Q(5), Closing: Q(0)},
	}
	assertRowsEqual(t, rows, want)
}

func TestBuildLedgerGapFill(t *testing.T) {
	canon := DefaultCanonicalizer()
	txs := []Transaction{
		{CaseID: "C-1", Date: NewDate(2024, 1, 5), Qty: Q(3), Direction: Entry, Kind: KindIn, Location: "MOSB", Counterparty: "SOURCE"},
		{CaseID: "C-1", Date: NewDate(2024, 4, 2), Qty: Q(3), Direction: Exit, Kind: KindTransferOut, Location: "MOSB", Counterparty: "DSV Indoor"},
		{CaseID: "C-1", Date: NewDate(2024, 4, 2), Qty: Q(3), Direction: Entry, Kind: KindIn, Location: "DSV Indoor", Counterparty: "MOSB"},
	}

	rows := BuildLedger(canon, txs, Monthly)
	var mosb []LedgerRow
	for _, r := range rows {
		if r.Location == "MOSB" {
			mosb = append(mosb, r)
		}
	}
	if len(mosb) != 4 {
		t.Fatalf("MOSB rows = %d, want 4 (Jan through Apr)", len(mosb))
	}
	for i, month := range []Date{NewDate(2024, 1, 1), NewDate(2024, 2, 1), NewDate(2024, 3, 1), NewDate(2024, 4, 1)} {
		if mosb[i].Period != month {
			t.Errorf("row %d period = %s, want %s", i, mosb[i].Period, month)
		}
	}
	// Quiet months carry the balance forward untouched.
	if !mosb[1].Opening.Equal(Q(3)) || !mosb[1].Closing.Equal(Q(3)) || !mosb[1].Inbound.IsZero() {
		t.Errorf("February row = %+v, want balance 3 with no flows", mosb[1])
	}
	if !mosb[3].Closing.IsZero() {
		t.Errorf("April closing = %s, want 0", mosb[3].Closing)
	}
}

func TestBuildLedgerExcludesSitesAndUnknown(t *testing.T) {
	canon := DefaultCanonicalizer()
	txs := []Transaction{
		{CaseID: "C-1", Date: NewDate(2024, 1, 5), Qty: Q(1), Direction: Entry, Kind: KindIn, Location: "AGI", Counterparty: "SOURCE"},
		{CaseID: "C-2", Date: NewDate(2024, 1, 5), Qty: Q(1), Direction: Entry, Kind: KindIn, Location: "UNKNOWN", Counterparty: "SOURCE"},
		{CaseID: "C-3", Date: NewDate(2024, 1, 5), Qty: Q(1), Direction: Entry, Kind: KindIn, Location: "UNK", Counterparty: "SOURCE"},
		{CaseID: "C-4", Date: NewDate(2024, 1, 5), Qty: Q(1), Direction: Entry, Kind: KindIn, Location: "DSV Indoor", Counterparty: "SOURCE"},
	}
	rows := BuildLedger(canon, txs, Monthly)
	if len(rows) != 1 || rows[0].Location != "DSV Indoor" {
		t.Errorf("rows = %v, want only DSV Indoor", rows)
	}
}

func TestBuildLedgerDaily(t *testing.T) {
	canon := DefaultCanonicalizer()
	txs := []Transaction{
		{CaseID: "C-1", Date: NewDate(2024, 1, 5), Qty: Q(2), Direction: Entry, Kind: KindIn, Location: "DSV Indoor", Counterparty: "SOURCE"},
		{CaseID: "C-1", Date: NewDate(2024, 1, 7), Qty: Q(2), Direction: Exit, Kind: KindTransferOut, Location: "DSV Indoor", Counterparty: "MOSB"},
	}
	rows := BuildLedger(canon, txs, Daily)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (Jan 5 through Jan 7)", len(rows))
	}
	if rows[1].Period != NewDate(2024, 1, 6) || !rows[1].Opening.Equal(Q(2)) {
		t.Errorf("middle row = %+v, want quiet Jan 6 holding 2", rows[1])
	}
	if !rows[2].Closing.IsZero() {
		t.Errorf("last closing = %s, want 0", rows[2].Closing)
	}
}

func TestClosingByLocation(t *testing.T) {
	rows := []LedgerRow{
		{Location: "A", Period: NewDate(2024, 1, 1), Closing: Q(5)},
		{Location: "A", Period: NewDate(2024, 2, 1), Closing: Q(2)},
		{Location: "B", Period: NewDate(2024, 1, 1), Closing: Q(7)},
	}
	got := ClosingByLocation(rows)
	if !got["A"].Equal(Q(2)) || !got["B"].Equal(Q(7)) {
		t.Errorf("ClosingByLocation = %v, want A:2 B:7", got)
	}
}

// assertRowsEqual compares ledger rows field by field using Quantity
// equality, since decimal values with equal value may differ in
// representation.
func assertRowsEqual(t *testing.T, got, want []LedgerRow) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		same := g.Location == w.Location && g.Period == w.Period &&
			g.Opening.Equal(w.Opening) && g.Inbound.Equal(w.Inbound) &&
			g.TransferOut.Equal(w.TransferOut) && g.FinalOut.Equal(w.FinalOut) &&
			g.Outbound.Equal(w.Outbound) && g.Closing.Equal(w.Closing)
		if !same {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
	}
}
