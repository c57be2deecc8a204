// Package cmd implements the CLI application to run warehouse stock
// analysis batches.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hvdc-project/stockledger"
	"github.com/hvdc-project/stockledger/fuzzy"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyzeCmd{}, "analysis")
	c.Register(&validateCmd{}, "analysis")
	c.Register(&reconcileCmd{}, "analysis")
	c.Register(&dormantCmd{}, "analysis")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var recordsFile = flag.String("records-file", "movements.jsonl", "Path to the movement records file (JSONL format)")
var rulesFile = flag.String("rules-file", "", "Path to a location rules file (JSONL format). Empty uses the built-in HVDC rules")
var verbose = flag.Bool("v", false, "Log progress to stderr")

// Logger returns the application logger. Quiet by default so that
// markdown output stays clean.
func Logger() zerolog.Logger {
	if !*verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// LoadCanonicalizer loads the rules file, or the built-in rules when
// none is given.
func LoadCanonicalizer() (*stockledger.Canonicalizer, error) {
	if *rulesFile == "" {
		return stockledger.DefaultCanonicalizer(), nil
	}
	f, err := os.Open(*rulesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open rules file: %w", err)
	}
	defer f.Close()
	return stockledger.DecodeRules(*rulesFile, f)
}

// LoadRecords reads the movement records file.
func LoadRecords() ([]stockledger.Record, error) {
	f, err := os.Open(*recordsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open records file: %w", err)
	}
	defer f.Close()
	return stockledger.DecodeRecords(*recordsFile, f)
}

// newPipeline assembles a pipeline from the global flags plus the
// subcommand's own settings.
func newPipeline(canon *stockledger.Canonicalizer, bucket stockledger.Period, asOf stockledger.Date, dormantDays int) stockledger.Pipeline {
	return stockledger.Pipeline{
		Canon:       canon,
		Resolver:    fuzzy.Resolver{},
		Bucket:      bucket,
		AsOf:        asOf,
		DormantDays: dormantDays,
		Log:         Logger(),
	}
}
