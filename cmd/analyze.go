package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hvdc-project/stockledger"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	bucket      string
	asOf        string
	dormantDays int
	txOut       string
	ledgerOut   string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "run the full movement analysis batch" }
func (*analyzeCmd) Usage() string {
	return `hvdcstock analyze [-bucket <daily|monthly>] [-as-of <date>] [-tx-out <file>] [-ledger-out <file>]

  Extracts movements from the records file, classifies them into
  transactions, folds the stock ledger, validates it and scans for
  dormant cases. Prints a summary report and optionally writes the
  transactions and ledger as JSONL.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucket, "bucket", "monthly", "Ledger bucket granularity: daily or monthly.")
	f.StringVar(&c.asOf, "as-of", stockledger.Today().String(), "Reference date for the dormancy scan.")
	f.IntVar(&c.dormantDays, "dormant-days", stockledger.DefaultDormantDays, "Idle days before a case is dormant. 0 disables the scan.")
	f.StringVar(&c.txOut, "tx-out", "", "Write classified transactions to this JSONL file.")
	f.StringVar(&c.ledgerOut, "ledger-out", "", "Write ledger rows to this JSONL file.")
}

func (c *analyzeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	bucket, err := stockledger.ParsePeriod(c.bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bucket: %v\n", err)
		return subcommands.ExitUsageError
	}
	asOf, err := stockledger.ParseDate(c.asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing as-of date: %v\n", err)
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

	res := newPipeline(canon, bucket, asOf, c.dormantDays).Run(records, nil)

	if c.txOut != "" {
		if err := writeJSONL(c.txOut, func(f *os.File) error {
			return stockledger.EncodeTransactions(f, res.Transactions)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing transactions %q: %v\n", c.txOut, err)
			return subcommands.ExitFailure
		}
	}
	if c.ledgerOut != "" {
		if err := writeJSONL(c.ledgerOut, func(f *os.File) error {
			return stockledger.EncodeLedger(f, res.Rows)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing ledger %q: %v\n", c.ledgerOut, err)
			return subcommands.ExitFailure
		}
	}

	md := summaryMarkdown(res) + ledgerMarkdown(res.Rows, bucket) + dormantMarkdown(res.Dormant, asOf, c.dormantDays)
	printMarkdown(md)

	if !res.Report.Passed() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeJSONL(filename string, write func(*os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
