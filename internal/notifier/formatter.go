package notifier

import (
	"fmt"
	"strings"
	"time"

	"TimeSeriesML/internal/recorder"
)

// FormatRunReport formats one preparation run into a Telegram message.
func FormatRunReport(run *recorder.Run) string {
	var b strings.Builder

	if run.Status != recorder.StatusOK {
		b.WriteString(fmt.Sprintf("❌ <b>%s</b> dataset failed | %s\n\n", run.Symbol, run.StartedAt.Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Error: %s\n", run.Error))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> dataset ready | %s\n\n", run.Symbol, run.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Rows: %d\n", run.Rows))
	b.WriteString(fmt.Sprintf("Window: %d steps, predicting %d ahead\n", run.NSteps, run.LookupStep))
	b.WriteString(fmt.Sprintf("Sequences: %d train / %d test\n", run.TrainSize, run.TestSize))
	if len(run.Features) > 0 {
		b.WriteString(fmt.Sprintf("Features: %s\n", strings.Join(run.Features, ", ")))
	}
	if run.ExportPath != "" {
		b.WriteString(fmt.Sprintf("Export: %s\n", run.ExportPath))
	}
	b.WriteString(fmt.Sprintf("Took %s\n", run.Duration.Round(time.Millisecond)))
	if run.TrainSize+run.TestSize == 0 {
		b.WriteString("\n⚠️ Not enough history for a single window")
	}
	return b.String()
}

// FormatRefreshSummary formats the outcome of a scheduled refresh.
func FormatRefreshSummary(runs []*recorder.Run) string {
	var b strings.Builder
	ok := 0
	for _, r := range runs {
		if r.Status == recorder.StatusOK {
			ok++
		}
	}
	b.WriteString(fmt.Sprintf("🔄 <b>Refresh</b> | %s\n\n", time.Now().Format("2006-01-02")))
	for _, r := range runs {
		if r.Status == recorder.StatusOK {
			b.WriteString(fmt.Sprintf("  ✅ %s: %d/%d\n", r.Symbol, r.TrainSize, r.TestSize))
		} else {
			b.WriteString(fmt.Sprintf("  ❌ %s: %s\n", r.Symbol, r.Error))
		}
	}
	b.WriteString(fmt.Sprintf("\n%d of %d symbols prepared", ok, len(runs)))
	return b.String()
}

// FormatStatus formats the latest stored run per symbol.
func FormatStatus(runs []*recorder.Run, missing []string) string {
	var b strings.Builder
	b.WriteString("📦 <b>Dataset status</b>\n\n")
	for _, r := range runs {
		mark := "✅"
		if r.Status != recorder.StatusOK {
			mark = "❌"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s, %d/%d sequences\n",
			mark, r.Symbol, r.StartedAt.Format("2006-01-02 15:04"), r.TrainSize, r.TestSize))
	}
	for _, s := range missing {
		b.WriteString(fmt.Sprintf("➖ %s: never prepared\n", s))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return "Commands:\n" +
		"/status - latest run per symbol\n" +
		"/refresh - prepare every symbol now\n" +
		"/help - this message"
}
