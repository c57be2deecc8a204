package stockledger

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeRecords(t *testing.T) {
	src := `{"Case No.":"C-1","Q'TY":5,"DSV Indoor":"2024-01-05","AGI":null}

{"Case No.":"C-2","MOSB":"2024-02-01","done":true}`

	records, err := DecodeRecords("wh.jsonl", strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	want := []Record{
		{SourceID: "wh.jsonl#1", Fields: []Field{
			{"Case No.", "C-1"},
			{"Q'TY", "5"},
			{"DSV Indoor", "2024-01-05"},
			{"AGI", ""},
		}},
		{SourceID: "wh.jsonl#3", Fields: []Field{
			{"Case No.", "C-2"},
			{"MOSB", "2024-02-01"},
			{"done", "true"},
		}},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestDecodeRecordsFieldOrder(t *testing.T) {
	// Column order carries meaning; decoding must not reorder keys.
	src := `{"z":"1","a":"2","m":"3"}`
	records, err := DecodeRecords("x.jsonl", strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	var names []string
	for _, f := range records[0].Fields {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"z", "a", "m"}) {
		t.Errorf("field order = %v, want [z a m]", names)
	}
}

func TestDecodeRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not an object", `["a","b"]`},
		{"nested value", `{"a":{"b":1}}`},
		{"truncated", `{"a":"1"`},
	}
	for _, tc := range tests {
		if _, err := DecodeRecords("x.jsonl", strings.NewReader(tc.src)); err == nil {
			t.Errorf("%s: DecodeRecords accepted %q, want error", tc.name, tc.src)
		}
	}
}

func TestDecodeSnapshot(t *testing.T) {
	src := `{
		"report": {
			"rows": [
				{"loc": "M44-A1", "count": 40},
				{"loc": "M44-B2", "count": 60},
				{"loc": "MOSB", "count": "17.5"}
			]
		}
	}`

	canon := DefaultCanonicalizer()
	snapshot, err := DecodeSnapshot(strings.NewReader(src), canon, "$.report.rows", "$.loc", "$.count")
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	// Both M44 bays canonicalize to DSV Indoor and are summed.
	if !snapshot["DSV Indoor"].Equal(Q(100)) {
		t.Errorf("DSV Indoor = %s, want 100", snapshot["DSV Indoor"])
	}
	if !snapshot["MOSB"].Equal(Q(17.5)) {
		t.Errorf("MOSB = %s, want 17.5", snapshot["MOSB"])
	}
}

func TestDecodeSnapshotErrors(t *testing.T) {
	canon := DefaultCanonicalizer()
	tests := []struct {
		name               string
		src, rows, loc, qty string
	}{
		{"not json", `nope`, "$.rows", "$.loc", "$.qty"},
		{"rows not a list", `{"rows": 3}`, "$.rows", "$.loc", "$.qty"},
		{"bad qty", `{"rows":[{"loc":"MOSB","qty":"many"}]}`, "$.rows", "$.loc", "$.qty"},
		{"missing loc", `{"rows":[{"qty":1}]}`, "$.rows", "$.loc", "$.qty"},
	}
	for _, tc := range tests {
		if _, err := DecodeSnapshot(strings.NewReader(tc.src), canon, tc.rows, tc.loc, tc.qty); err == nil {
			t.Errorf("%s: DecodeSnapshot accepted %q, want error", tc.name, tc.src)
		}
	}
}

func TestDecodeSnapshotLines(t *testing.T) {
	src := `{"location":"M44","qty":"40"}
{"location":"Outdoor Yard","qty":"12"}`

	canon := DefaultCanonicalizer()
	snapshot, err := DecodeSnapshotLines("count.jsonl", strings.NewReader(src), canon)
	if err != nil {
		t.Fatalf("DecodeSnapshotLines: %v", err)
	}
	if !snapshot["DSV Indoor"].Equal(Q(40)) || !snapshot["DSV Outdoor"].Equal(Q(12)) {
		t.Errorf("snapshot = %v, want DSV Indoor 40, DSV Outdoor 12", snapshot)
	}
}

func TestEncodeDecodeTransactions(t *testing.T) {
	txs := []Transaction{
		{CaseID: "C-1", Date: NewDate(2024, 1, 5), Qty: Q(5), Direction: Entry, Kind: KindIn, Location: "DSV Indoor", Counterparty: "SOURCE"},
		{CaseID: "C-1", Date: NewDate(2024, 2, 10), Qty: Q(5), Direction: Exit, Kind: KindTransferOut, Location: "DSV Indoor", Counterparty: "MOSB"},
	}
	var buf strings.Builder
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatalf("EncodeTransactions: %v", err)
	}
	got := buf.String()
	for _, fragment := range []string{`"case":"C-1"`, `"direction":"ENTRY"`, `"kind":"IN"`, `"counterparty":"SOURCE"`} {
		if !strings.Contains(got, fragment) {
			t.Errorf("encoded %q, missing %q", got, fragment)
		}
	}

	back, err := DecodeTransactions("tx.jsonl", strings.NewReader(got))
	if err != nil {
		t.Fatalf("DecodeTransactions: %v", err)
	}
	if len(back) != len(txs) {
		t.Fatalf("decoded %d transactions, want %d", len(back), len(txs))
	}
	for i := range txs {
		w, g := txs[i], back[i]
		if g.CaseID != w.CaseID || g.Date != w.Date || !g.Qty.Equal(w.Qty) ||
			g.Direction != w.Direction || g.Kind != w.Kind ||
			g.Location != w.Location || g.Counterparty != w.Counterparty {
			t.Errorf("transaction %d = %v, want %v", i, g, w)
		}
	}
}

func TestDecodeTransactionsRejectsUnknownVocabulary(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad direction", `{"case":"C-1","date":"2024-01-05","qty":1,"direction":"SIDEWAYS","kind":"IN","location":"MOSB","counterparty":"SOURCE"}`},
		{"bad kind", `{"case":"C-1","date":"2024-01-05","qty":1,"direction":"ENTRY","kind":"TELEPORT","location":"MOSB","counterparty":"SOURCE"}`},
	}
	for _, tc := range tests {
		if _, err := DecodeTransactions("tx.jsonl", strings.NewReader(tc.src)); err == nil {
			t.Errorf("%s: DecodeTransactions accepted %q, want error", tc.name, tc.src)
		}
	}
}
