package stockledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Sentinel names produced by canonicalization.
const (
	// LocUnknown is the canonical name for a missing or empty location.
	LocUnknown = "UNKNOWN"
	// SiteUnknown is the canonical name for a value that matches no site pattern.
	SiteUnknown = "UNK"
	// SourceSentinel is the counterparty of a case's very first observed
	// entry: the system boundary, not a warehouse.
	SourceSentinel = "SOURCE"
)

// LocationRule maps a location pattern to its canonical warehouse name.
// Patterns are matched against the full input string, case-insensitively.
type LocationRule struct {
	Pattern   string `json:"pattern"`
	Canonical string `json:"canonical"`
}

// SiteRule maps a site pattern to its canonical delivery-site name.
// Patterns are matched as substrings, case-insensitively.
type SiteRule struct {
	Pattern string `json:"pattern"`
	Site    string `json:"site"`
}

// Canonicalizer resolves raw free-text location and column labels to a
// fixed vocabulary of warehouses and delivery sites.
//
// Rules are ordered: the first match wins, so more specific patterns
// must precede broader ones. A Canonicalizer is immutable after
// construction; multiple rule sets (e.g. per-project ontologies) can
// coexist in one process.
type Canonicalizer struct {
	locations []compiledLocation
	sites     []SiteRule
}

type compiledLocation struct {
	re        *regexp.Regexp
	canonical string
}

// NewCanonicalizer compiles an ordered rule set. Location patterns are
// anchored to the full string.
func NewCanonicalizer(locations []LocationRule, sites []SiteRule) (*Canonicalizer, error) {
	c := &Canonicalizer{sites: append([]SiteRule(nil), sites...)}
	for _, rule := range locations {
		re, err := regexp.Compile(`(?i)^(?:` + rule.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid location pattern %q: %w", rule.Pattern, err)
		}
		c.locations = append(c.locations, compiledLocation{re: re, canonical: rule.Canonical})
	}
	return c, nil
}

// DefaultLocationRules is the built-in warehouse vocabulary of the HVDC
// project. Order matters: bay codes before the generic substring rules.
func DefaultLocationRules() []LocationRule {
	return []LocationRule{
		{Pattern: `M44.*`, Canonical: "DSV Indoor"},
		{Pattern: `M1.*`, Canonical: "DSV Al Markaz"},
		{Pattern: `OUT.*`, Canonical: "DSV Outdoor"},
		{Pattern: `MOSB.*`, Canonical: "MOSB"},
		{Pattern: `MZP.*`, Canonical: "DSV MZP"},
		{Pattern: `.*Indoor.*`, Canonical: "DSV Indoor"},
		{Pattern: `.*Outdoor.*`, Canonical: "DSV Outdoor"},
		{Pattern: `.*Al.*Markaz.*`, Canonical: "DSV Al Markaz"},
		{Pattern: `.*Markaz.*`, Canonical: "DSV Al Markaz"},
		{Pattern: `Hauler.*Indoor`, Canonical: "DSV Indoor"},
		{Pattern: `DHL.*WH`, Canonical: "DHL WH"},
		{Pattern: `AAA.*Storage`, Canonical: "AAA Storage"},
		{Pattern: `Shifting`, Canonical: "Shifting"},
	}
}

// DefaultSiteRules is the built-in delivery-site vocabulary.
func DefaultSiteRules() []SiteRule {
	return []SiteRule{
		{Pattern: "AGI", Site: "AGI"},
		{Pattern: "DAS", Site: "DAS"},
		{Pattern: "MIR", Site: "MIR"},
		{Pattern: "SHU", Site: "SHU"},
	}
}

// DefaultCanonicalizer returns a Canonicalizer loaded with the built-in
// HVDC rule set.
func DefaultCanonicalizer() *Canonicalizer {
	c, err := NewCanonicalizer(DefaultLocationRules(), DefaultSiteRules())
	if err != nil {
		// The built-in patterns are constants; failing to compile them is a bug.
		panic(err)
	}
	return c
}

// Location maps a raw location label to its canonical warehouse name.
// Unmatched input is returned verbatim, not coerced to UNKNOWN, so
// callers can detect unmapped categories. Empty input yields UNKNOWN.
func (c *Canonicalizer) Location(raw string) string {
	name, _ := c.MatchLocation(raw)
	return name
}

// MatchLocation is Location with an explicit report of whether a rule
// matched. The extractor uses the flag to decide whether a column label
// is a warehouse column at all.
func (c *Canonicalizer) MatchLocation(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LocUnknown, false
	}
	for _, rule := range c.locations {
		if rule.re.MatchString(raw) {
			return rule.canonical, true
		}
	}
	return raw, false
}

// Site resolves candidate values to a canonical site name.
//
// Candidates are tried in priority order, and the first one containing
// any site pattern wins. Callers pass (explicit site field, destination
// location, origin location) — this fallback order resolves genuine
// ambiguity in which field carries authoritative site information and
// must not be reordered. If nothing matches, Site returns UNK.
func (c *Canonicalizer) Site(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		upper := strings.ToUpper(candidate)
		for _, rule := range c.sites {
			if strings.Contains(upper, strings.ToUpper(rule.Pattern)) {
				return rule.Site
			}
		}
	}
	return SiteUnknown
}

// IsSite reports whether name resolves to a known delivery site.
func (c *Canonicalizer) IsSite(name string) bool {
	return c.Site(name) != SiteUnknown
}

// DecodeRules reads an alternative rule set from a JSONL stream:
// one rule per line, location rules as {"pattern","canonical"} and site
// rules as {"pattern","site"}. The line order is the match order.
// filename is for error messages only.
func DecodeRules(filename string, r io.Reader) (*Canonicalizer, error) {
	// jrule is the object read from the file using the json parser.
	type jrule struct {
		Pattern   string `json:"pattern"`
		Canonical string `json:"canonical"`
		Site      string `json:"site"`
	}

	var locations []LocationRule
	var sites []SiteRule

	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var jr jrule
		if err := json.Unmarshal([]byte(line), &jr); err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		switch {
		case jr.Pattern == "":
			return nil, fmt.Errorf("format error in %q line %d: missing pattern", filename, i)
		case jr.Canonical != "" && jr.Site != "":
			return nil, fmt.Errorf("format error in %q line %d: rule is both location and site", filename, i)
		case jr.Canonical != "":
			locations = append(locations, LocationRule{Pattern: jr.Pattern, Canonical: jr.Canonical})
		case jr.Site != "":
			sites = append(sites, SiteRule{Pattern: jr.Pattern, Site: jr.Site})
		default:
			return nil, fmt.Errorf("format error in %q line %d: missing canonical or site", filename, i)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return NewCanonicalizer(locations, sites)
}
