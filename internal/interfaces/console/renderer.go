package console

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain/model"
)

// ANSI color codes
const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

// Colorize applies ANSI color to a string
func Colorize(s, color string) string {
	return color + s + ansiReset
}

// Renderer formats board and portfolio state for the terminal.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// RenderTicker renders the live watchlist line. Direction coloring follows
// the quote's single-step change percent.
func (r *Renderer) RenderTicker(symbols []string, snapshot map[string]model.Quote, live bool) string {
	var sb strings.Builder

	if live {
		sb.WriteString("\r")
	}

	sb.WriteString(Colorize("[PAPERTRADE] ", ansiDim))

	for i, sym := range symbols {
		if i > 0 {
			sb.WriteString(Colorize("  |  ", ansiDim))
		}

		q, ok := snapshot[sym]
		if !ok {
			sb.WriteString(sym)
			sb.WriteString(" ")
			sb.WriteString(Colorize("--", ansiYellow))
			continue
		}

		col := ansiYellow
		switch {
		case q.ChangePercent > 0:
			col = ansiGreen
		case q.ChangePercent < 0:
			col = ansiRed
		}

		sb.WriteString(sym)
		sb.WriteString(" ")
		sb.WriteString(Colorize(fmt.Sprintf("%.2f", q.Price), col))
		sb.WriteString(" ")
		sb.WriteString(Colorize(fmt.Sprintf("%+.2f%%", q.ChangePercent), col))
	}

	if live {
		sb.WriteString(ansiClearEOL)
	}

	return sb.String()
}

// RenderPortfolio renders the valuation report as snapshot lines.
func (r *Renderer) RenderPortfolio(rep model.PortfolioReport) []string {
	lines := make([]string, 0, len(rep.Positions)+2)

	for _, p := range rep.Positions {
		col := ansiYellow
		switch {
		case p.UnrealizedPnL.IsPositive():
			col = ansiGreen
		case p.UnrealizedPnL.IsNegative():
			col = ansiRed
		}
		lines = append(lines, fmt.Sprintf("%-6s qty %-5d avg %-10s px %-10.2f val %-12s %s",
			p.Symbol, p.Quantity, p.AvgCost.StringFixed(2), p.Price,
			p.MarketValue.StringFixed(2),
			Colorize(fmt.Sprintf("%s (%+.2f%%)", p.UnrealizedPnL.StringFixed(2), p.UnrealizedPct), col)))
	}

	lines = append(lines, fmt.Sprintf("cash %s", rep.Cash.StringFixed(2)))

	col := ansiYellow
	switch {
	case rep.ChangePercent > 0:
		col = ansiGreen
	case rep.ChangePercent < 0:
		col = ansiRed
	}
	lines = append(lines, fmt.Sprintf("total %s %s",
		rep.TotalValue.StringFixed(2),
		Colorize(fmt.Sprintf("%+.2f%%", rep.ChangePercent), col)))

	return lines
}

// RenderHistory renders a chart series as aligned rows.
func (r *Renderer) RenderHistory(symbol string, tf model.Timeframe, points []model.HistoryPoint) []string {
	lines := make([]string, 0, len(points)+1)
	lines = append(lines, fmt.Sprintf("%s %s (%d points)", symbol, tf, len(points)))
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%-10s %10.2f", p.Date, p.Close))
	}
	return lines
}

// RenderTrade renders a trade confirmation.
func (r *Renderer) RenderTrade(tx model.Transaction, realized, cashAfter decimal.Decimal) string {
	base := fmt.Sprintf("%s %d %s @ %s total %s cash %s",
		strings.ToUpper(string(tx.Side)), tx.Quantity, tx.Symbol,
		tx.Price.StringFixed(2), tx.Total.StringFixed(2), cashAfter.StringFixed(2))
	if tx.Side == model.SideSell {
		return base + " realized " + realized.StringFixed(2)
	}
	return base
}
