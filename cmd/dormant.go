package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hvdc-project/stockledger"
)

// dormantCmd holds the flags for the 'dormant' subcommand.
type dormantCmd struct {
	asOf string
	days int
}

func (*dormantCmd) Name() string     { return "dormant" }
func (*dormantCmd) Synopsis() string { return "list cases idle in storage beyond a threshold" }
func (*dormantCmd) Usage() string {
	return `hvdcstock dormant [-as-of <date>] [-days <n>]

  Lists cases that are still in a warehouse and have not moved for the
  given number of days, oldest first.
`
}

func (c *dormantCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "as-of", stockledger.Today().String(), "Reference date for idle age.")
	f.IntVar(&c.days, "days", stockledger.DefaultDormantDays, "Idle days before a case is dormant.")
}

func (c *dormantCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	res := newPipeline(canon, stockledger.Monthly, asOf, c.days).Run(records, nil)
	printMarkdown(dormantMarkdown(res.Dormant, asOf, c.days))
	return subcommands.ExitSuccess
}
