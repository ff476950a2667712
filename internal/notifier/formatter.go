package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalSentinel/internal/model"
)

func signalIcon(s model.Signal) string {
	switch s {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	case model.SignalNeutral:
		return "⚪"
	default:
		return "⚠️"
	}
}

// FormatReport formats one analysis report into a Telegram message.
func FormatReport(rep *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b>", html.EscapeString(rep.Symbol)))
	if !rep.AsOf.IsZero() {
		b.WriteString(fmt.Sprintf(" | %s", rep.AsOf.Format("2006-01-02")))
	}
	b.WriteString("\n\n")

	if rep.State == model.StateFailed {
		b.WriteString("❌ analysis failed")
		if rep.Err != nil {
			b.WriteString(": " + html.EscapeString(rep.Err.Error()))
		}
		b.WriteString("\n")
		return b.String()
	}

	for _, t := range rep.Triples() {
		b.WriteString(fmt.Sprintf("%s %s: %s (%s)\n", signalIcon(t.Signal), t.Name, t.Value, t.Signal.Label()))
	}

	b.WriteString(fmt.Sprintf("\n🤖 <b>Forecast:</b> %s\n", rep.Prediction.Text()))
	if rep.Bars == 0 {
		b.WriteString("⚠️ no stored history, run /add to ingest it\n")
	}
	return b.String()
}

// FormatBatch joins the reports of one scheduled run.
func FormatBatch(reports []*model.Report) string {
	if len(reports) == 0 {
		return "📭 watchlist is empty"
	}
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, FormatReport(r))
	}
	return strings.Join(parts, "\n")
}

// FormatWatchlist lists the watched symbols.
func FormatWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "📭 watchlist is empty"
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n")
	for _, s := range symbols {
		b.WriteString("  • " + html.EscapeString(s) + "\n")
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "<b>Commands</b>\n" +
		"/analyze SYMBOL - run the indicator analysis\n" +
		"/watchlist - list watched symbols\n" +
		"/add SYMBOL - watch a symbol and ingest its history\n" +
		"/remove SYMBOL - stop watching and drop stored history\n"
}
