package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type ingestCmd struct {
	symbols string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "fetches daily history and stores it" }
func (*ingestCmd) Usage() string {
	return `sentinel ingest [-symbols A,B]

Fetches data_source.history_days of daily bars from the configured provider
(yahoo, fmp or mock) and upserts them into the SQLite store.
Without -symbols the watchlist is used.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "Comma separated tickers to ingest.")
}

func (c *ingestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	syms, err := a.symbols(ctx, c.symbols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(syms) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no symbols, pass -symbols or add some with 'sentinel watch add'")
		return subcommands.ExitUsageError
	}

	status := subcommands.ExitSuccess
	for _, s := range syms {
		n, err := a.collector.Sync(ctx, s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", s, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: %d bars\n", s, n)
	}
	return status
}
