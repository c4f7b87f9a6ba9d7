package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"QuantChart/internal/recorder"
)

// RenderReport summarizes one rendered chart.
type RenderReport struct {
	Symbol     string
	Time       time.Time
	Mode       string
	Handle     string
	Rows       int
	LastClose  float64
	LastVolume float64
	Warnings   []string
}

func price(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.##", v)
}

func volume(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return humanize.Comma(int64(math.Round(v)))
}

// FormatRenderReport formats a rendered chart into a Telegram message.
func FormatRenderReport(r RenderReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s\n\n", html.EscapeString(r.Symbol), r.Time.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Last close: %s\n", price(r.LastClose)))
	b.WriteString(fmt.Sprintf("Last volume: %s\n", volume(r.LastVolume)))
	b.WriteString(fmt.Sprintf("Bars: %s\n", humanize.Comma(int64(r.Rows))))
	b.WriteString(fmt.Sprintf("Chart (%s): %s\n", r.Mode, html.EscapeString(r.Handle)))

	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("\n⚠️ %s", html.EscapeString(w)))
	}
	return b.String()
}

// FormatHistory lists recent renders, newest first.
func FormatHistory(events []recorder.RenderEvent, now time.Time) string {
	if len(events) == 0 {
		return "No charts rendered yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent charts</b>\n\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("• %s %s, close %s (%s)\n",
			html.EscapeString(e.Ticker), e.Kind, price(e.LastClose), humanize.RelTime(e.Time, now, "ago", "from now")))
	}
	return b.String()
}

// FormatHelp lists the commands the bot understands.
func FormatHelp() string {
	return "Commands:\n• /chart render the configured chart now\n• /history list recent charts"
}

// FormatFailure reports a failed render.
func FormatFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ Chart for %s failed: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}
