package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"SignalSentinel/internal/model"

	"github.com/google/subcommands"
)

type analyzeCmd struct {
	symbols string
	asJSON  bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyzes symbols once and prints the indicator signals" }
func (*analyzeCmd) Usage() string {
	return `sentinel analyze [-symbols A,B] [-json]

Runs the analysis on stored history and prints one (name, value, signal)
row per indicator plus the forecast. Without -symbols the watchlist is used.
Run 'sentinel ingest' first to store history.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "Comma separated tickers to analyze.")
	f.BoolVar(&c.asJSON, "json", false, "Print reports as JSON lines.")
}

func (c *analyzeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	reports := a.pipeline.RunAll(ctx, syms, a.cfg.Analysis.Workers)
	if c.asJSON {
		err = writeJSON(os.Stdout, reports)
	} else {
		err = writeTable(os.Stdout, reports)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, r := range reports {
		if r.State == model.StateFailed {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

type reportJSON struct {
	RunID      string         `json:"run_id"`
	Symbol     string         `json:"symbol"`
	State      string         `json:"state"`
	AsOf       string         `json:"as_of,omitempty"`
	Indicators []model.Triple `json:"indicators"`
	Prediction string         `json:"prediction"`
	Error      string         `json:"error,omitempty"`
}

func writeJSON(w io.Writer, reports []*model.Report) error {
	enc := json.NewEncoder(w)
	for _, r := range reports {
		out := reportJSON{
			RunID:      r.RunID,
			Symbol:     r.Symbol,
			State:      string(r.State),
			Indicators: r.Triples(),
			Prediction: r.Prediction.Text(),
		}
		if !r.AsOf.IsZero() {
			out.AsOf = r.AsOf.Format("2006-01-02")
		}
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, reports []*model.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range reports {
		if r.State == model.StateFailed {
			fmt.Fprintf(tw, "%s\tFAILED\t%v\t\n", r.Symbol, r.Err)
			continue
		}
		for _, t := range r.Triples() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Symbol, t.Name, t.Value, t.Signal)
		}
		fmt.Fprintf(tw, "%s\tForecast\t%s\t\n", r.Symbol, r.Prediction.Text())
	}
	return tw.Flush()
}
