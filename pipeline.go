package stockledger

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CaseFailure records a case whose classification failed. One bad case
// never aborts a batch; it is reported alongside the results computed
// from the rest.
type CaseFailure struct {
	CaseID string `json:"case"`
	Err    string `json:"error"`
}

// Pipeline runs the whole chain: extraction, classification, ledger
// folding, validation, and the optional reconciliation and dormancy
// scans.
type Pipeline struct {
	Canon    *Canonicalizer
	Resolver ColumnResolver
	Bucket   Period
	AsOf     Date // reference date for dormancy, never the wall clock
	// DormantDays is the dormancy threshold; 0 disables the scan.
	DormantDays int
	// Workers bounds classification concurrency; 0 means GOMAXPROCS.
	Workers int
	Log     zerolog.Logger
}

// RunResult is everything one batch run produced.
type RunResult struct {
	RunID          string                 `json:"run_id"`
	Extract        ExtractResult          `json:"-"`
	Transactions   []Transaction          `json:"transactions"`
	Anomalies      []Anomaly              `json:"anomalies,omitempty"`
	Failures       []CaseFailure          `json:"failures,omitempty"`
	Rows           []LedgerRow            `json:"rows"`
	Report         ValidationReport       `json:"report"`
	Reconciliation []ReconciliationRecord `json:"reconciliation,omitempty"`
	Dormant        []DormantCase          `json:"dormant,omitempty"`
}

// Run processes a batch of records. snapshot may be nil, in which case
// no reconciliation is performed. The output is deterministic for a
// given input regardless of worker count.
func (p Pipeline) Run(records []Record, snapshot map[string]Quantity) RunResult {
	res := RunResult{RunID: uuid.NewString()}
	log := p.Log.With().Str("run", res.RunID).Logger()

	log.Info().Int("records", len(records)).Msg("extracting movements")
	x := Extractor{Canon: p.Canon, Resolver: p.Resolver}
	res.Extract = x.Extract(records)
	log.Info().
		Int("events", len(res.Extract.Events)).
		Int("rejected", res.Extract.Rejected).
		Int("cells_skipped", res.Extract.CellsSkipped).
		Msg("extraction done")
	for _, skip := range res.Extract.Skips {
		log.Warn().Str("source", skip.SourceID).Msg(skip.Reason)
	}

	ids, byCase := GroupByCase(res.Extract.Events)
	res.Transactions, res.Anomalies, res.Failures = p.classifyCases(log, ids, byCase)
	log.Info().
		Int("cases", len(ids)).
		Int("transactions", len(res.Transactions)).
		Int("anomalies", len(res.Anomalies)).
		Int("failures", len(res.Failures)).
		Msg("classification done")

	res.Rows = BuildLedger(p.Canon, res.Transactions, p.Bucket)
	res.Report = ValidateLedger(res.Rows)
	if !res.Report.Passed() {
		log.Error().Int("errors", len(res.Report.Errors)).Msg("ledger validation failed")
	}

	if snapshot != nil {
		res.Reconciliation = Reconcile(res.Rows, snapshot)
		log.Info().
			Int("locations", len(res.Reconciliation)).
			Int("attention", len(Attention(res.Reconciliation))).
			Msg("reconciliation done")
	}
	if p.DormantDays > 0 {
		res.Dormant = DormantCases(p.Canon, res.Transactions, p.AsOf, p.DormantDays)
		log.Info().Int("dormant", len(res.Dormant)).Msg("dormancy scan done")
	}
	return res
}

// classifyCases fans case classification out over a bounded worker
// pool. Results are reassembled in sorted case order, so concurrency
// never changes the output. A panic while classifying one case is
// turned into a CaseFailure for that case alone.
func (p Pipeline) classifyCases(log zerolog.Logger, ids []string, byCase map[string][]MovementEvent) ([]Transaction, []Anomaly, []CaseFailure) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	type caseResult struct {
		txs       []Transaction
		anomalies []Anomaly
		err       error
	}
	results := make(map[string]caseResult, len(ids))
	var mu sync.Mutex

	classifier := Classifier{Canon: p.Canon}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				r := p.classifyOne(classifier, id, byCase[id])
				mu.Lock()
				results[id] = caseResult{txs: r.txs, anomalies: r.anomalies, err: r.err}
				mu.Unlock()
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	var txs []Transaction
	var anomalies []Anomaly
	var failures []CaseFailure
	for _, id := range ids {
		r := results[id]
		if r.err != nil {
			log.Error().Str("case", id).Err(r.err).Msg("case classification failed")
			failures = append(failures, CaseFailure{CaseID: id, Err: r.err.Error()})
			continue
		}
		txs = append(txs, r.txs...)
		anomalies = append(anomalies, r.anomalies...)
	}
	return txs, anomalies, failures
}

type oneResult struct {
	txs       []Transaction
	anomalies []Anomaly
	err       error
}

func (p Pipeline) classifyOne(c Classifier, id string, events []MovementEvent) (r oneResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r = oneResult{err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	r.txs, r.anomalies = c.Classify(id, events)
	return r
}
