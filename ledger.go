package stockledger

import "sort"

// LedgerRow is one location's stock account over one period bucket.
// Opening carries the previous period's Closing, so consecutive rows
// of a location chain into a continuous balance.
type LedgerRow struct {
	Location    string   `json:"location"`
	Period      Date     `json:"period"` // bucket start date
	Opening     Quantity `json:"opening"`
	Inbound     Quantity `json:"inbound"`
	TransferOut Quantity `json:"transfer_out"`
	FinalOut    Quantity `json:"final_out"`
	Outbound    Quantity `json:"outbound"`
	Closing     Quantity `json:"closing"`
}

// BuildLedger folds transactions into per-location, per-period stock
// rows, bucketed by the given period granularity.
//
// Only warehouses keep a ledger: transactions at UNKNOWN or at a
// delivery site are excluded, since a site is a terminal destination
// and not a stock-keeping location. Periods with no movement between a
// location's first and last active bucket are filled in with zero
// flows, so the Opening chain never skips a period.
//
// Rows are sorted by location, then period.
func BuildLedger(canon *Canonicalizer, txs []Transaction, bucket Period) []LedgerRow {
	type flows struct {
		in, transferOut, finalOut Quantity
	}
	perLocation := make(map[string]map[Date]*flows)

	for _, tx := range txs {
		if tx.Location == LocUnknown || tx.Location == SiteUnknown || canon.IsSite(tx.Location) {
			continue
		}
		buckets := perLocation[tx.Location]
		if buckets == nil {
			buckets = make(map[Date]*flows)
			perLocation[tx.Location] = buckets
		}
		key := tx.Date.StartOf(bucket)
		f := buckets[key]
		if f == nil {
			f = &flows{}
			buckets[key] = f
		}
		switch tx.Direction {
		case Entry:
			f.in = f.in.Add(tx.Qty)
		case Exit:
			if tx.Kind == KindFinalOut {
				f.finalOut = f.finalOut.Add(tx.Qty)
			} else {
				f.transferOut = f.transferOut.Add(tx.Qty)
			}
		}
	}

	locations := make([]string, 0, len(perLocation))
	for loc := range perLocation {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var rows []LedgerRow
	for _, loc := range locations {
		buckets := perLocation[loc]
		periods := make([]Date, 0, len(buckets))
		for p := range buckets {
			periods = append(periods, p)
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

		var balance Quantity
		first, last := periods[0], periods[len(periods)-1]
		for p := first; !p.After(last); p = p.Next(bucket) {
			f := buckets[p]
			if f == nil {
				f = &flows{}
			}
			outbound := f.transferOut.Add(f.finalOut)
			row := LedgerRow{
				Location:    loc,
				Period:      p,
				Opening:     balance,
				Inbound:     f.in,
				TransferOut: f.transferOut,
				FinalOut:    f.finalOut,
				Outbound:    outbound,
				Closing:     balance.Add(f.in).Sub(outbound),
			}
			balance = row.Closing
			rows = append(rows, row)
		}
	}
	return rows
}

// ClosingByLocation returns each location's last closing balance.
func ClosingByLocation(rows []LedgerRow) map[string]Quantity {
	closing := make(map[string]Quantity)
	for _, row := range rows {
		// Rows are sorted, the last row per location wins.
		closing[row.Location] = row.Closing
	}
	return closing
}
