// Package presenter renders reconciled prediction results: chart datasets
// for browser front ends and lipgloss tables for the terminal.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"stockpredict-api/internal/prediction"
)

var (
	colorGain   = lipgloss.Color("#22C55E")
	colorLoss   = lipgloss.Color("#EF4444")
	colorBorder = lipgloss.Color("#4B5563")
	colorMuted  = lipgloss.Color("#9CA3AF")
	colorWarn   = lipgloss.Color("#F4D03F")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	gainStyle   = cellStyle.Foreground(colorGain)
	lossStyle   = cellStyle.Foreground(colorLoss)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
)

// Percent formats a percent return with two decimals, e.g. "10.00%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Currency formats v as dollars with thousands separators, e.g. "$1,234.56".
func Currency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

func signedStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return gainStyle
	case v < 0:
		return lossStyle
	default:
		return cellStyle
	}
}

// Summary renders one row of metrics per model.
func Summary(r *prediction.Result) string {
	returns := make([]float64, len(r.Models))
	rows := make([][]string, len(r.Models))
	for i, model := range r.Models {
		m := r.Metrics[model]
		returns[i] = m.PercentReturn
		rows[i] = []string{
			displayName(model),
			Currency(m.FinalBalance),
			Percent(m.PercentReturn),
			Currency(m.ProfitLoss),
			decimal.NewFromFloat(m.RMSE).StringFixed(4),
			fmt.Sprintf("%d (%d/%d)", m.Trades, m.Buys, m.Sells),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Model", "Final Balance", "Return", "Profit/Loss", "RMSE", "Trades (B/S)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if (col == 2 || col == 3) && row >= 0 && row < len(returns) {
				return signedStyle(returns[row])
			}
			return cellStyle
		})

	return t.String()
}

// TradeTable renders the trade log of model in date order.
func TradeTable(r *prediction.Result, model string) string {
	trades := r.TradeLogs[model]
	rows := make([][]string, len(trades))
	for i, t := range trades {
		rows[i] = []string{
			t.Date.String(),
			string(t.Action),
			decimal.NewFromFloat(t.Shares).String(),
			Currency(t.Price),
			Currency(t.Balance),
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Date", "Action", "Shares", "Price", "Balance").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(trades) {
				if trades[row].Action == prediction.ActionBought {
					return gainStyle
				}
				return lossStyle
			}
			return cellStyle
		})

	return tbl.String()
}

// Render writes the full terminal report of r to w.
func Render(w io.Writer, r *prediction.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%s · %s · starting balance %s", r.Ticker, r.Period, Currency(r.InitialBalance))))
	if r.ProfitLoss != nil {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("reported profit/loss "+Currency(*r.ProfitLoss)))
	}
	if n := len(r.Series.Dates); n > 0 {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("%d dates, %s to %s", n, r.Series.Dates[0], r.Series.Dates[n-1])))
	}
	b.WriteString(Summary(r))
	b.WriteString("\n")

	for _, warning := range r.Warnings {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render("warning: "+warning.Message))
	}

	for _, model := range r.Models {
		if len(r.TradeLogs[model]) == 0 {
			fmt.Fprintf(&b, "\n%s\n", mutedStyle.Render(displayName(model)+" model made no trades"))
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(displayName(model)+" model trades"))
		b.WriteString(TradeTable(r, model))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
