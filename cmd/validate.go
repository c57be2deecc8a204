package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hvdc-project/stockledger"
)

// validateCmd holds the flags for the 'validate' subcommand.
type validateCmd struct {
	bucket string
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check the stock ledger accounting identities" }
func (*validateCmd) Usage() string {
	return `hvdcstock validate [-bucket <daily|monthly>]

  Builds the stock ledger from the records file and checks every row for
  balance and continuity. Exits non-zero when any check fails.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucket, "bucket", "monthly", "Ledger bucket granularity: daily or monthly.")
}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	res := newPipeline(canon, bucket, stockledger.Today(), 0).Run(records, nil)
	printMarkdown(validationMarkdown(res.Report))

	if !res.Report.Passed() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
