package stockledger

import "sort"

// DefaultDormantDays is the idle age beyond which a case in storage is
// flagged for review.
const DefaultDormantDays = 180

// DormantCase is a case sitting in a warehouse with no movement for at
// least the dormancy threshold.
type DormantCase struct {
	CaseID   string   `json:"case"`
	LastMove Date     `json:"last_move"`
	DaysIdle int      `json:"days_idle"`
	Location string   `json:"location"` // last known warehouse
	Qty      Quantity `json:"qty"`
}

// DormantCases scans transactions for cases whose last movement is
// thresholdDays or more before asOf and which were last seen entering
// a warehouse rather than a site. Results are sorted by idle age,
// oldest first, then case id.
func DormantCases(canon *Canonicalizer, txs []Transaction, asOf Date, thresholdDays int) []DormantCase {
	type lastSeen struct {
		date     Date
		location string
		qty      Quantity
	}
	last := make(map[string]lastSeen)

	for _, tx := range txs {
		if tx.Direction != Entry {
			continue
		}
		seen, ok := last[tx.CaseID]
		if !ok || seen.date.Before(tx.Date) || seen.date == tx.Date {
			// On a same-day tie the later transaction wins: it is the
			// later hop of the day.
			last[tx.CaseID] = lastSeen{date: tx.Date, location: tx.Location, qty: tx.Qty}
		}
	}

	var dormant []DormantCase
	for caseID, seen := range last {
		if seen.location == LocUnknown || seen.location == SiteUnknown || canon.IsSite(seen.location) {
			// Delivered or untracked cases are not in storage.
			continue
		}
		idle := asOf.DaysSince(seen.date)
		if idle >= thresholdDays {
			dormant = append(dormant, DormantCase{
				CaseID:   caseID,
				LastMove: seen.date,
				DaysIdle: idle,
				Location: seen.location,
				Qty:      seen.qty,
			})
		}
	}
	sort.Slice(dormant, func(i, j int) bool {
		if dormant[i].DaysIdle != dormant[j].DaysIdle {
			return dormant[i].DaysIdle > dormant[j].DaysIdle
		}
		return dormant[i].CaseID < dormant[j].CaseID
	})
	return dormant
}
