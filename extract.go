package stockledger

import (
	"fmt"
	"sort"
	"strings"
)

// Field is one named cell of a source record. Order is preserved from
// the source, and matters: when two movements of a case share a date,
// column order decides which came first.
type Field struct {
	Name  string
	Value string
}

// Record is one row of movement data as read from a source file.
type Record struct {
	SourceID string
	Fields   []Field
}

// Get returns the value of the first field with the given name, and
// whether it exists.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// ColumnResolver picks, among a record's field names, the one that best
// matches a set of candidate labels. Implementations decide how fuzzy
// the matching is; a score below threshold means no match.
type ColumnResolver interface {
	Resolve(fields []string, candidates []string, threshold float64) (string, bool)
}

// Candidate labels for the identifying and quantity columns. Matching
// is fuzzy, so "Case No." or "Q'TY (PKG)" still resolve.
var (
	caseColumns = []string{"case", "carton", "box", "mr#", "sct ship no", "case no"}
	qtyColumns  = []string{"q'ty", "qty", "quantity", "received", "p'kg", "pkg"}

	// nonLocationHints are label fragments that mark a date column as
	// logistics scheduling, not warehouse presence. A column whose name
	// contains one of these never yields a movement event.
	nonLocationHints = []string{"etd", "eta", "atd", "ata", "date", "time", "departure", "arrival"}
)

// similarityThreshold is the minimum fuzzy-match score for header
// resolution.
const similarityThreshold = 0.7

// RecordSkip explains why a whole record produced no events.
type RecordSkip struct {
	SourceID string
	Reason   string
}

// ExtractResult is the outcome of extracting a batch of records.
type ExtractResult struct {
	Events []MovementEvent
	Skips  []RecordSkip

	Records      int // records seen
	Rejected     int // records skipped entirely
	CellsSkipped int // non-empty location cells that did not parse as dates
}

// Extractor turns raw records into movement events using a location
// vocabulary and a header resolver.
type Extractor struct {
	Canon    *Canonicalizer
	Resolver ColumnResolver
}

// Extract scans records for warehouse and site columns holding dates,
// and emits one MovementEvent per dated cell. Records without a
// resolvable case identifier are skipped and reported, never dropped
// silently. A record's quantity defaults to 1 when the quantity column
// is missing or unparseable.
func (x Extractor) Extract(records []Record) ExtractResult {
	var res ExtractResult
	one := Q(1)

	for _, rec := range records {
		res.Records++

		names := make([]string, len(rec.Fields))
		for i, f := range rec.Fields {
			names[i] = f.Name
		}

		caseCol, ok := x.Resolver.Resolve(names, caseColumns, similarityThreshold)
		if !ok {
			res.Rejected++
			res.Skips = append(res.Skips, RecordSkip{SourceID: rec.SourceID, Reason: "no case identifier column"})
			continue
		}
		caseID, _ := rec.Get(caseCol)
		caseID = strings.TrimSpace(caseID)
		if caseID == "" {
			res.Rejected++
			res.Skips = append(res.Skips, RecordSkip{SourceID: rec.SourceID, Reason: fmt.Sprintf("empty case identifier in column %q", caseCol)})
			continue
		}

		qty := one
		if qtyCol, ok := x.Resolver.Resolve(names, qtyColumns, similarityThreshold); ok {
			if raw, ok := rec.Get(qtyCol); ok {
				if q, err := ParseQuantity(strings.TrimSpace(raw)); err == nil && q.IsPositive() {
					qty = q
				}
			}
		}

		for _, f := range rec.Fields {
			loc, ok := x.locationColumn(f.Name)
			if !ok {
				continue
			}
			cell := strings.TrimSpace(f.Value)
			if cell == "" {
				continue
			}
			date, ok := ParseCellDate(cell)
			if !ok {
				res.CellsSkipped++
				continue
			}
			res.Events = append(res.Events, MovementEvent{
				CaseID:   caseID,
				Date:     date,
				Location: loc,
				Qty:      qty,
				SourceID: rec.SourceID,
			})
		}
	}
	return res
}

// locationColumn reports whether a column name denotes a warehouse or
// site, and if so its canonical name. Scheduling columns (ETA, ETD and
// friends) are excluded even when their label would otherwise match.
func (x Extractor) locationColumn(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, hint := range nonLocationHints {
		if strings.Contains(lower, hint) {
			return "", false
		}
	}
	if canonical, ok := x.Canon.MatchLocation(name); ok {
		return canonical, true
	}
	if site := x.Canon.Site(name); site != SiteUnknown {
		return site, true
	}
	return "", false
}

// GroupByCase partitions events per case, preserving extraction order
// within each case. The returned case ids are sorted.
func GroupByCase(events []MovementEvent) (ids []string, byCase map[string][]MovementEvent) {
	byCase = make(map[string][]MovementEvent)
	for _, ev := range events {
		if _, seen := byCase[ev.CaseID]; !seen {
			ids = append(ids, ev.CaseID)
		}
		byCase[ev.CaseID] = append(byCase[ev.CaseID], ev)
	}
	sort.Strings(ids)
	return ids, byCase
}
