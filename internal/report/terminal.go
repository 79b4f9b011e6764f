package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wonny/fundlens/internal/contracts"
)

// Terminal styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	strongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	weakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// scoreStyle: 80점 이상 녹색, 나머지 주황
func scoreStyle(score float64) lipgloss.Style {
	if score >= 80 {
		return strongStyle
	}
	return weakStyle
}

// Terminal renders the ranking plus one card per stock
func Terminal(doc *Document) string {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = "Fundamental Analysis"
	}
	b.WriteString(titleStyle.Render("📊 "+title) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s | US 10Y %.2f%%", shortID(doc.RunID), doc.BondYield)) + "\n\n")

	b.WriteString(headerStyle.Render("🏆 Ranking") + "\n")
	b.WriteString(rankingTable(doc.Ranking) + "\n")

	for _, s := range doc.Skipped {
		b.WriteString(skipStyle.Render(fmt.Sprintf("⚠️ %s skipped at %s: %s", s.Code, s.Stage.ShortName(), s.Reason)) + "\n")
	}

	for _, r := range doc.Reports {
		b.WriteString("\n" + StockCard(r) + "\n")
	}

	return b.String()
}

// StockCard renders one stock as a bordered card
func StockCard(r *contracts.Report) string {
	var c strings.Builder

	score := r.MasterScore()
	fmt.Fprintf(&c, "%s  %s\n", headerStyle.Render(fmt.Sprintf("%s (%s)", r.Name, r.Code)), scoreStyle(score).Render(fmt.Sprintf("%.0f pts", score)))
	c.WriteString(mutedStyle.Render(fmt.Sprintf("%s | price %.2f", r.Industry, r.Price)) + "\n")

	if g := r.Growth; g != nil {
		fmt.Fprintf(&c, "🚀 %s | YoY %.1f%% | score %.0f\n", g.State, g.LatestYoY*100, g.Score)
	}
	if p := r.Profit; p != nil {
		fmt.Fprintf(&c, "🤝 %s | OPM %.1f%% | score %.0f\n", p.FourQ, p.LatestOPM*100, p.Score)
	}
	if rt := r.Return; rt != nil {
		fmt.Fprintf(&c, "👑 ROE %.1f%% | EPS %.2f → %.2f | score %.0f\n", rt.LatestROE*100, rt.LatestEPS, rt.NextYearEPS, rt.Score)
		fmt.Fprintf(&c, "%s\n", rt.Verdict)
	}
	if v := r.Valuation; v != nil {
		fmt.Fprintf(&c, "💰 cheap %.2f / fair %.2f / expensive %.2f | intrinsic %.2f (%+.1f%%)\n",
			v.CheapPrice, v.FairPrice, v.ExpensivePrice, v.IntrinsicValue, r.UpsidePct())
		fmt.Fprintf(&c, "%s", v.Verdict)
	} else {
		c.WriteString(mutedStyle.Render("💰 valuation unavailable"))
	}
	for _, w := range r.Warnings {
		c.WriteString("\n" + weakStyle.Render("⚠️ "+w))
	}

	return cardStyle.Render(c.String())
}

func rankingTable(rows []contracts.RankedReport) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No stocks analyzed.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-24s %7s %10s %10s %9s\n", "#", "Stock", "Master", "Price", "Intrinsic", "Upside")
	for _, r := range rows {
		upside := "n/a"
		if r.IntrinsicValue > 0 {
			upside = fmt.Sprintf("%+.1f%%", r.UpsidePct)
		}
		name := fmt.Sprintf("%s %s", r.Code, r.Name)
		if len([]rune(name)) > 24 {
			name = string([]rune(name)[:23]) + "…"
		}
		line := fmt.Sprintf("%-3d %-24s %7.1f %10.2f %10.2f %9s", r.Rank, name, r.MasterScore, r.Price, r.IntrinsicValue, upside)
		b.WriteString(scoreStyle(r.MasterScore).Render(line) + "\n")
	}
	return b.String()
}
