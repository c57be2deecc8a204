package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/hvdc-project/stockledger"
)

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	bucket       string
	snapshotFile string
	rowsPath     string
	locPath      string
	qtyPath      string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "compare ledger closings with a physical count" }
func (*reconcileCmd) Usage() string {
	return `hvdcstock reconcile -snapshot <file> [-bucket <daily|monthly>]

  Builds the stock ledger from the records file and compares each
  location's closing balance with an independently counted snapshot.

  A .jsonl snapshot is read as one {"location","qty"} object per line.
  Any other extension is read as a single JSON document, with the rows,
  location and quantity extracted by the JSONPath flags.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucket, "bucket", "monthly", "Ledger bucket granularity: daily or monthly.")
	f.StringVar(&c.snapshotFile, "snapshot", "", "Path to the physical count snapshot.")
	f.StringVar(&c.rowsPath, "rows-path", "$.rows", "JSONPath selecting the list of count rows.")
	f.StringVar(&c.locPath, "loc-path", "$.location", "JSONPath selecting a row's location label.")
	f.StringVar(&c.qtyPath, "qty-path", "$.qty", "JSONPath selecting a row's counted quantity.")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.snapshotFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -snapshot is required")
		return subcommands.ExitUsageError
	}
	bucket, err := stockledger.ParsePeriod(c.bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bucket: %v\n", err)
		return subcommands.ExitUsageError
	}
	canon, err := LoadCanonicalizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		return subcommands.ExitFailure
	}
	records, err := LoadRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}
	snapshot, err := c.loadSnapshot(canon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot %q: %v\n", c.snapshotFile, err)
		return subcommands.ExitFailure
	}

	res := newPipeline(canon, bucket, stockledger.Today(), 0).Run(records, snapshot)
	printMarkdown(reconcileMarkdown(res.Reconciliation))

	if len(stockledger.Attention(res.Reconciliation)) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reconcileCmd) loadSnapshot(canon *stockledger.Canonicalizer) (map[string]stockledger.Quantity, error) {
	f, err := os.Open(c.snapshotFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(c.snapshotFile, ".jsonl") {
		return stockledger.DecodeSnapshotLines(c.snapshotFile, f, canon)
	}
	return stockledger.DecodeSnapshot(f, canon, c.rowsPath, c.locPath, c.qtyPath)
}
