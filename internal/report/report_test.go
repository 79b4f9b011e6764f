package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
)

func testDocument() *Document {
	tsmc := &contracts.Report{
		Code:      "2330",
		Name:      "TSMC",
		Industry:  "Semiconductors",
		Price:     600,
		PriceDate: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		BondYield: 4.2,
		Growth:    &contracts.GrowthResult{Score: 76, State: "🚀 Full acceleration (main uptrend)", LatestYoY: 0.2},
		Profit:    &contracts.ProfitResult{Score: 105, FourQ: "💎 Golden expansion", LatestOPM: 0.05},
		Return:    &contracts.ReturnResult{Score: 100, MasterScore: 94.3, Verdict: "🏆 King", LatestROE: 0.2, LatestEPS: 4.4, NextYearEPS: 5.27},
		Valuation: &contracts.ValuationResult{CheapPrice: 540, FairPrice: 690, ExpensivePrice: 840, IntrinsicValue: 900, Verdict: "✅ Poised"},
		News:      []contracts.NewsItem{{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Title: "TSMC monthly revenue hits record"}},
	}
	mtk := &contracts.Report{
		Code:     "2454",
		Name:     "MediaTek",
		Industry: "Semiconductors",
		Growth:   &contracts.GrowthResult{Score: 60},
		Profit:   &contracts.ProfitResult{Score: 70},
		Return:   &contracts.ReturnResult{Score: 65, MasterScore: 65.5, Verdict: "📈 Steady"},
		Warnings: []string{"valuation: no latest price"},
	}

	res := &brain.RunResult{
		RunID:     "3f2b9c1e-aaaa-bbbb-cccc-000000000000",
		StartedAt: time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC),
		BondYield: 4.2,
		Reports:   []*contracts.Report{tsmc, mtk},
		Ranking: []contracts.RankedReport{
			{Rank: 1, Code: "2330", Name: "TSMC", Price: 600, IntrinsicValue: 900, UpsidePct: 50, FairPrice: 690, MasterScore: 94.3, Verdict: "🏆 King"},
			{Rank: 2, Code: "2454", Name: "MediaTek", MasterScore: 65.5, Verdict: "📈 Steady", ValuationVerdict: "unavailable"},
		},
		Skipped: []contracts.Skip{{Code: "2881", Stage: contracts.StageUniverse, Reason: "industry \"Financials\" | not applicable"}},
	}
	return NewDocument("Watchlist", res)
}

func TestNewDocument(t *testing.T) {
	doc := testDocument()
	assert.Equal(t, "Watchlist", doc.Title)
	assert.Equal(t, 4.2, doc.BondYield)
	assert.Len(t, doc.Ranking, 2)
	assert.Equal(t, "MediaTek", doc.Report("2454").Name)
	assert.Nil(t, doc.Report("9999"))
}

func TestWriteRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, testDocument().Ranking))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"), "BOM first")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank,code,name,industry,price,intrinsic_value,upside_pct"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,2330,TSMC,"), lines[1])
	assert.Contains(t, lines[2], "unavailable")
}

func TestMarkdown(t *testing.T) {
	out := Markdown(testDocument())

	assert.True(t, strings.HasPrefix(out, "# Watchlist\n"))
	assert.Contains(t, out, "run `3f2b9c1e`")
	assert.Contains(t, out, "| 1 | TSMC (2330) | 94.3 | 600.00 | 900.00 | +50.0% |")
	assert.Contains(t, out, "| 2 | MediaTek (2454) | 65.5 | 0.00 | 0.00 | n/a |")
	assert.Contains(t, out, "| 2881 | S1 | industry \"Financials\" \\| not applicable |")
	assert.Contains(t, out, "## TSMC (2330)")
	assert.Contains(t, out, "Price: 600.00 (2025-01-14)")
	assert.Contains(t, out, "| 540.00 | 690.00 | 840.00 | 900.00 | +50.0% |")
	assert.Contains(t, out, "2025-01-10 TSMC monthly revenue hits record")
	assert.Contains(t, out, "Valuation unavailable.")
	assert.Contains(t, out, "- valuation: no latest price")
	assert.Contains(t, out, "| master_score | 94.30 |")
}

func TestMarkdown_Empty(t *testing.T) {
	out := Markdown(&Document{})
	assert.Contains(t, out, "# Fundamental Analysis")
	assert.Contains(t, out, "No stocks analyzed.")
}

func TestHTML(t *testing.T) {
	doc := testDocument()
	doc.Title = "Watchlist <daily>"

	page, err := HTML(doc)
	require.NoError(t, err)

	out := string(page)
	assert.Contains(t, out, "<title>Watchlist &lt;daily&gt;</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>TSMC (2330)</td>")
	assert.Contains(t, out, "<details>")
	assert.Contains(t, out, "<h2>TSMC (2330)</h2>")
}

func TestStockHTML(t *testing.T) {
	page, err := StockHTML(testDocument(), "2330")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>TSMC (2330)</title>")
	assert.NotContains(t, string(page), "MediaTek")

	_, err = StockHTML(testDocument(), "9999")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	out := Terminal(testDocument())

	assert.Contains(t, out, "Watchlist")
	assert.Contains(t, out, "TSMC (2330)")
	assert.Contains(t, out, "94 pts")
	assert.Contains(t, out, "intrinsic 900.00 (+50.0%)")
	assert.Contains(t, out, "valuation unavailable")
	assert.Contains(t, out, "2881 skipped at S1")
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		FormatCSV:      ".csv",
		FormatMarkdown: ".md",
		FormatHTML:     ".html",
		FormatJSON:     ".json",
		FormatTable:    ".txt",
	}
	for format, want := range tests {
		assert.Equal(t, want, Ext(format), format)
	}
	assert.Len(t, Formats(), 5)
}

func TestRender(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatTable, "🏆 Ranking"},
		{FormatCSV, "rank,code,name"},
		{FormatMarkdown, "## 🏆 Ranking"},
		{FormatHTML, "<!DOCTYPE html>"},
		{FormatJSON, `"run_id": "3f2b9c1e-aaaa-bbbb-cccc-000000000000"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, testDocument(), tt.format))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, testDocument(), "pdf"))
}
