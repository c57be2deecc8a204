package stockledger

import (
	"strings"
	"testing"
)

func TestCanonicalizerLocation(t *testing.T) {
	c := DefaultCanonicalizer()

	tests := []struct {
		raw  string
		want string
	}{
		{"M44-A2", "DSV Indoor"},
		{"m44", "DSV Indoor"},
		{"M101", "DSV Al Markaz"},
		{"OUT-Y3", "DSV Outdoor"},
		{"MOSB", "MOSB"},
		{"MOSB Yard 2", "MOSB"},
		{"MZP-01", "DSV MZP"},
		{"DSV Indoor", "DSV Indoor"},
		{"Hauler Indoor", "DSV Indoor"},
		{"DSV Outdoor", "DSV Outdoor"},
		{"Al Markaz", "DSV Al Markaz"},
		{"Markaz Yard", "DSV Al Markaz"},
		{"DHL WH", "DHL WH"},
		{"AAA  Storage", "AAA Storage"},
		{"Shifting", "Shifting"},
		{"", "UNKNOWN"},
		{"   ", "UNKNOWN"},
		{"Container Freight", "Container Freight"}, // unmatched passes through
	}

	for _, tc := range tests {
		if got := c.Location(tc.raw); got != tc.want {
			t.Errorf("Location(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalizerRuleOrder(t *testing.T) {
	// "DSV Indoor Markaz Annex" matches both rules; the first listed
	// must win, so swapping the list changes the outcome.
	narrow := LocationRule{Pattern: `.*Indoor.*`, Canonical: "DSV Indoor"}
	broad := LocationRule{Pattern: `.*Markaz.*`, Canonical: "DSV Al Markaz"}

	c, err := NewCanonicalizer([]LocationRule{narrow, broad}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Location("DSV Indoor Markaz Annex"); got != "DSV Indoor" {
		t.Errorf("Location = %q, want DSV Indoor: first rule must win", got)
	}

	c, err = NewCanonicalizer([]LocationRule{broad, narrow}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Location("DSV Indoor Markaz Annex"); got != "DSV Al Markaz" {
		t.Errorf("Location = %q, want DSV Al Markaz after reordering", got)
	}
}

func TestCanonicalizerSite(t *testing.T) {
	c := DefaultCanonicalizer()

	tests := []struct {
		candidates []string
		want       string
	}{
		{[]string{"AGI"}, "AGI"},
		{[]string{"das site"}, "DAS"},
		{[]string{"MIR-Substation"}, "MIR"},
		{[]string{"SHU yard"}, "SHU"},
		{[]string{"", "DAS"}, "DAS"},
		// Fallback order: the explicit site column wins over destination.
		{[]string{"AGI", "DAS"}, "AGI"},
		{[]string{"warehouse", "depot"}, "UNK"},
		{nil, "UNK"},
	}

	for _, tc := range tests {
		if got := c.Site(tc.candidates...); got != tc.want {
			t.Errorf("Site(%v) = %q, want %q", tc.candidates, got, tc.want)
		}
	}
}

func TestCanonicalizerIsSite(t *testing.T) {
	c := DefaultCanonicalizer()
	if !c.IsSite("AGI") {
		t.Errorf("IsSite(AGI) = false, want true")
	}
	if c.IsSite("DSV Indoor") {
		t.Errorf("IsSite(DSV Indoor) = true, want false")
	}
}

func TestDecodeRules(t *testing.T) {
	src := `{"pattern":"WH.*","canonical":"Main WH"}
{"pattern":"PLANT","site":"PLT"}

{"pattern":".*Annex.*","canonical":"Annex"}`

	c, err := DecodeRules("rules.jsonl", strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeRules: %v", err)
	}
	if got := c.Location("WH-3"); got != "Main WH" {
		t.Errorf("Location(WH-3) = %q, want Main WH", got)
	}
	if got := c.Location("East Annex"); got != "Annex" {
		t.Errorf("Location(East Annex) = %q, want Annex", got)
	}
	if got := c.Site("PLANT NORTH"); got != "PLT" {
		t.Errorf("Site(PLANT NORTH) = %q, want PLT", got)
	}
}

func TestDecodeRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not json", `pattern=WH`},
		{"missing pattern", `{"canonical":"Main WH"}`},
		{"both kinds", `{"pattern":"X","canonical":"A","site":"B"}`},
		{"neither kind", `{"pattern":"X"}`},
		{"bad regexp", `{"pattern":"[","canonical":"A"}`},
	}
	for _, tc := range tests {
		if _, err := DecodeRules("rules.jsonl", strings.NewReader(tc.src)); err == nil {
			t.Errorf("%s: DecodeRules accepted %q, want error", tc.name, tc.src)
		}
	}
}
