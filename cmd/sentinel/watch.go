package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"SignalSentinel/internal/model"

	"github.com/google/subcommands"
)

type watchCmd struct {
	count int
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "manages the watchlist" }
func (*watchCmd) Usage() string {
	return `sentinel watch add [-count N] SYMBOL...
sentinel watch remove SYMBOL...
sentinel watch list

Removing a symbol also drops its stored history.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "count", 0, "Number of shares held, stored with added symbols.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	action, args := f.Arg(0), f.Args()[1:]
	if action != "list" && len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %s needs at least one symbol\n", action)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	status := subcommands.ExitSuccess
	switch action {
	case "add":
		for _, s := range args {
			added, err := a.store.AddSymbol(ctx, s, c.count)
			switch {
			case err != nil:
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", s, err)
				status = subcommands.ExitFailure
			case added:
				fmt.Printf("added %s\n", strings.ToUpper(s))
			default:
				fmt.Printf("%s already watched\n", strings.ToUpper(s))
			}
		}
	case "remove":
		for _, s := range args {
			err := a.store.DeleteSymbol(ctx, s)
			switch {
			case errors.Is(err, model.ErrUnknownSymbol):
				fmt.Printf("%s not watched\n", strings.ToUpper(s))
			case err != nil:
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", s, err)
				status = subcommands.ExitFailure
			default:
				fmt.Printf("removed %s\n", strings.ToUpper(s))
			}
		}
	case "list":
		entries, err := a.store.Watchlist(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		for _, e := range entries {
			fmt.Printf("%s\t%d\n", e.Symbol, e.Count)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown action %q\n", action)
		return subcommands.ExitUsageError
	}
	return status
}
