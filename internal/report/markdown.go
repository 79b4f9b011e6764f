package report

import (
	"fmt"
	"strings"

	"github.com/wonny/fundlens/internal/contracts"
)

// Markdown renders the ranking followed by one section per stock
func Markdown(doc *Document) string {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = "Fundamental Analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s | run `%s` | US 10Y %.2f%%_\n\n",
		doc.GeneratedAt.Format("2006-01-02 15:04"), shortID(doc.RunID), doc.BondYield)

	b.WriteString("## 🏆 Ranking\n\n")
	writeRankingTable(&b, doc.Ranking)

	if len(doc.Skipped) > 0 {
		b.WriteString("\n## ⚠️ Skipped\n\n")
		b.WriteString("| Code | Stage | Reason |\n|---|---|---|\n")
		for _, s := range doc.Skipped {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Code, s.Stage.ShortName(), escape(s.Reason))
		}
	}

	if q := doc.Quality; q != nil {
		fmt.Fprintf(&b, "\n_Data quality %.2f, %d/%d stocks complete_\n", q.QualityScore, q.ValidStocks, q.TotalStocks)
	}

	for _, r := range doc.Reports {
		b.WriteString("\n---\n\n")
		b.WriteString(StockMarkdown(r))
	}

	return b.String()
}

// StockMarkdown renders one stock's diagnosis
func StockMarkdown(r *contracts.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s (%s)\n\n", r.Name, r.Code)
	fmt.Fprintf(&b, "Industry: %s | Price: %.2f", r.Industry, r.Price)
	if !r.PriceDate.IsZero() {
		fmt.Fprintf(&b, " (%s)", r.PriceDate.Format("2006-01-02"))
	}
	b.WriteString("\n\n")
	if r.Note != "" {
		fmt.Fprintf(&b, "> ⚠️ %s\n\n", r.Note)
	}

	if rt := r.Return; rt != nil {
		fmt.Fprintf(&b, "**Master Score %.1f** | %s\n\n", rt.MasterScore, rt.Verdict)
	}

	if g := r.Growth; g != nil {
		b.WriteString("### 🚀 Growth momentum\n\n")
		fmt.Fprintf(&b, "- Signal: **%s**\n", g.State)
		fmt.Fprintf(&b, "- Stability: %s\n", g.QualityLabel)
		fmt.Fprintf(&b, "- Trend: %s\n", g.TrendLabel)
		fmt.Fprintf(&b, "- Burst: %s\n", g.BurstLabel)
		fmt.Fprintf(&b, "- Structure: %s\n", g.StructureLabel)
		fmt.Fprintf(&b, "- Score %.1f: %s\n\n", g.Score, g.Action)
	}

	if p := r.Profit; p != nil {
		b.WriteString("### 🤝 Profit quality\n\n")
		fmt.Fprintf(&b, "- Growth quality: **%s**\n", p.FourQ)
		fmt.Fprintf(&b, "- Margin trend: %s\n", p.FourR)
		fmt.Fprintf(&b, "- Efficiency: %s\n", p.EfficiencyLabel)
		fmt.Fprintf(&b, "- Score %.1f: %s\n\n", p.Score, p.Action)
	}

	if rt := r.Return; rt != nil {
		b.WriteString("### 👑 Shareholder return\n\n")
		fmt.Fprintf(&b, "- ROE %.1f%% (4Y avg %.1f%%), EPS %.2f\n", rt.LatestROE*100, rt.AvgROE4Y*100, rt.LatestEPS)
		fmt.Fprintf(&b, "- Conversion: %s\n", rt.ConversionLabel)
		fmt.Fprintf(&b, "- Next-year EPS estimate: %.2f\n\n", rt.NextYearEPS)
	}

	b.WriteString("### 💰 Valuation\n\n")
	if v := r.Valuation; v != nil {
		b.WriteString("| Cheap | Fair | Expensive | Intrinsic | Upside |\n|---|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %.2f | %.2f | %.2f | %.2f | %+.1f%% |\n\n",
			v.CheapPrice, v.FairPrice, v.ExpensivePrice, v.IntrinsicValue, r.UpsidePct())
		fmt.Fprintf(&b, "%s\n\n", v.Verdict)
	} else {
		b.WriteString("Valuation unavailable.\n\n")
	}

	if len(r.News) > 0 {
		b.WriteString("### 📰 News\n\n")
		for _, n := range r.News {
			fmt.Fprintf(&b, "- %s %s\n", n.Date.Format("2006-01-02"), n.Title)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("### Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("<details><summary>All fields</summary>\n\n| Field | Value |\n|---|---|\n")
	for _, f := range r.Fields() {
		fmt.Fprintf(&b, "| %s | %s |\n", f.Key, escape(f.Value))
	}
	b.WriteString("\n</details>\n")

	return b.String()
}

func writeRankingTable(b *strings.Builder, rows []contracts.RankedReport) {
	if len(rows) == 0 {
		b.WriteString("No stocks analyzed.\n")
		return
	}
	b.WriteString("| # | Stock | Master | Price | Intrinsic | Upside | Fair | Verdict |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		upside := "n/a"
		if r.IntrinsicValue > 0 {
			upside = fmt.Sprintf("%+.1f%%", r.UpsidePct)
		}
		fmt.Fprintf(b, "| %d | %s (%s) | %.1f | %.2f | %.2f | %s | %.2f | %s |\n",
			r.Rank, r.Name, r.Code, r.MasterScore, r.Price, r.IntrinsicValue, upside, r.FairPrice, escape(r.Verdict))
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
