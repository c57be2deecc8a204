package stockledger

import (
	"fmt"
	"sort"
)

// Classifier turns a case's movement timeline into directed
// transactions.
type Classifier struct {
	Canon *Canonicalizer
}

// Classify orders a case's events chronologically and derives one
// ENTRY per observed presence plus, for every hop, an EXIT at the
// previous location. The first entry's counterparty is SOURCE. An exit
// is FINAL_OUT when the destination is a delivery site, TRANSFER_OUT
// otherwise.
//
// The sort is stable: events sharing a date keep their extraction
// order, which reflects the column order of the source sheet.
//
// A case observed moving again after a final delivery is flagged as an
// anomaly; its later movements are still classified, so the ledger
// shows what the data says happened.
func (c Classifier) Classify(caseID string, events []MovementEvent) ([]Transaction, []Anomaly) {
	if len(events) == 0 {
		return nil, nil
	}

	ordered := append([]MovementEvent(nil), events...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var txs []Transaction
	var anomalies []Anomaly
	delivered := false

	for i, ev := range ordered {
		if delivered {
			anomalies = append(anomalies, Anomaly{
				CaseID:   caseID,
				Date:     ev.Date,
				Location: ev.Location,
				Detail:   fmt.Sprintf("movement to %q after final delivery", ev.Location),
			})
			delivered = false
		}

		counterparty := SourceSentinel
		if i > 0 {
			prev := ordered[i-1]
			counterparty = prev.Location

			kind := KindTransferOut
			if c.Canon.IsSite(ev.Location) {
				kind = KindFinalOut
			}
			txs = append(txs, Transaction{
				CaseID:       caseID,
				Date:         ev.Date,
				Qty:          prev.Qty,
				Direction:    Exit,
				Kind:         kind,
				Location:     prev.Location,
				Counterparty: ev.Location,
			})
		}

		txs = append(txs, Transaction{
			CaseID:       caseID,
			Date:         ev.Date,
			Qty:          ev.Qty,
			Direction:    Entry,
			Kind:         KindIn,
			Location:     ev.Location,
			Counterparty: counterparty,
		})

		if c.Canon.IsSite(ev.Location) {
			delivered = true
		}
	}
	return txs, anomalies
}

// ClassifyAll classifies every case of an extraction batch, in sorted
// case order so the output is deterministic.
func (c Classifier) ClassifyAll(events []MovementEvent) ([]Transaction, []Anomaly) {
	ids, byCase := GroupByCase(events)
	var txs []Transaction
	var anomalies []Anomaly
	for _, id := range ids {
		t, a := c.Classify(id, byCase[id])
		txs = append(txs, t...)
		anomalies = append(anomalies, a...)
	}
	return txs, anomalies
}
