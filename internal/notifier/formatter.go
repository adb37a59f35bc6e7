package notifier

import (
	"fmt"
	"html"
	"strings"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/format"
	"SectorPulse/internal/model"
	"SectorPulse/internal/strategy"
)

const dateLayout = "02-01-2006 15:04"

// FormatOverview formats the market snapshot into a Telegram message.
func FormatOverview(res *analyzer.Result) string {
	s := res.Snapshot
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Market Overview</b> | %s\n\n", s.AnalysisTimestamp.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("Total market cap: %s (%s)\n", format.Trillions(s.TotalMarketCap), format.Crores(s.TotalMarketCap)))
	b.WriteString(fmt.Sprintf("Average P/E: %s\n", format.Num(s.AveragePE, format.Fixed(2))))
	b.WriteString(fmt.Sprintf("Market breadth: %s advancing\n", format.Ratio(s.MarketBreadth)))

	counts := strategy.CountSignals(res.Records)
	b.WriteString(fmt.Sprintf("Signals: 🟢 %d Buy | 🔴 %d Sell | ⚪ %d Unknown\n",
		counts[model.SignalBuy], counts[model.SignalSell], counts[model.SignalUnknown]))

	b.WriteString("\n📈 <b>Top gainers</b>\n")
	for i, r := range s.TopGainers {
		b.WriteString(fmt.Sprintf("%d. %s %s (%s)\n", i+1, esc(r.Symbol),
			format.Num(r.DailyChangePct, format.SignedPct), format.Num(r.CurrentPrice, format.Rupees)))
	}

	b.WriteString("\n🔥 <b>Most active</b>\n")
	for i, r := range s.MostActive {
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, esc(r.Symbol), format.Num(r.Volume, format.Volume)))
	}

	if len(res.Issues) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d symbol issue(s), see /signals\n", len(res.Issues)))
	}
	return b.String()
}

// FormatSignals lists every symbol's crossover signal with its averages.
func FormatSignals(records []model.SymbolRecord) string {
	var b strings.Builder
	b.WriteString("🚦 <b>Trading Signals</b> (SMA20 vs SMA50)\n\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s | SMA20 %s | SMA50 %s\n",
			signalIcon(r.Signal), esc(r.Symbol), r.Signal,
			format.Num(r.SMA20, format.Fixed(2)), format.Num(r.SMA50, format.Fixed(2))))
	}
	return b.String()
}

// FormatSectors summarizes the sector aggregates.
func FormatSectors(stats []model.SectorStats, records []model.SymbolRecord) string {
	var b strings.Builder
	b.WriteString("🏭 <b>Sector Analysis</b>\n\n")
	for _, s := range stats {
		b.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n", esc(s.Sector), s.Count))
		b.WriteString(fmt.Sprintf("  Cap: %s | P/E: %s | Chg: %s\n",
			format.Crores(s.TotalMarketCap),
			format.Num(s.MeanPE, format.Fixed(2)),
			format.Num(s.MeanDailyChange, format.SignedPct)))
	}

	b.WriteString("\n<b>P/E vs sector</b>\n")
	for _, r := range records {
		if !r.PEvsSector.Valid {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %.2fx\n", esc(r.Symbol), r.PEvsSector.Float64))
	}
	return b.String()
}

// FormatCycleFailure reports a fetch cycle that produced no analysis.
func FormatCycleFailure(err error, failed int) string {
	return fmt.Sprintf("❌ <b>Fetch cycle failed</b>\n\n%s\nSymbols failed: %d\nThe previous analysis is still served.",
		esc(err.Error()), failed)
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n• /overview\n• /signals\n• /sectors\n• /refresh"
}

func signalIcon(s model.Signal) string {
	switch s {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	default:
		return "⚪"
	}
}

func esc(s string) string { return html.EscapeString(s) }
