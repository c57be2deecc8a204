package fuzzy

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"qty", "qty", 1},
		{"", "", 0},
		{"abc", "xyz", 0},
		{"quantity", "qty", 2 * 3.0 / 11}, // q, t, y in common
	}
	for _, tc := range tests {
		if got := Ratio(tc.a, tc.b); got != tc.want {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	var r Resolver
	fields := []string{"No.", "Case No.", "Description", "Q'TY (PKG)", "DSV Indoor", "MOSB"}

	tests := []struct {
		candidates []string
		want       string
		ok         bool
	}{
		{[]string{"case", "carton", "box"}, "Case No.", true},
		{[]string{"q'ty", "qty", "quantity"}, "Q'TY (PKG)", true},
		{[]string{"vessel name"}, "", false},
	}
	for _, tc := range tests {
		got, ok := r.Resolve(fields, tc.candidates, 0.7)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Resolve(%v) = %q, %v, want %q, %v", tc.candidates, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveTypo(t *testing.T) {
	// Fuzzy pass: "Quantiy" is not a substring match for any candidate
	// but is close enough to "quantity".
	var r Resolver
	got, ok := r.Resolve([]string{"Quantiy"}, []string{"quantity"}, 0.7)
	if !ok || got != "Quantiy" {
		t.Errorf("Resolve(Quantiy) = %q, %v, want Quantiy, true", got, ok)
	}
}
