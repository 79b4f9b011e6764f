package report

import (
	"time"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
)

// Document is everything one export renders
// ⭐ SSOT: 모든 출력 포맷(CSV/Markdown/HTML/터미널)의 입력
type Document struct {
	Title       string                         `json:"title"`
	RunID       string                         `json:"run_id"`
	GeneratedAt time.Time                      `json:"generated_at"`
	BondYield   float64                        `json:"bond_yield"`
	Ranking     []contracts.RankedReport       `json:"ranking"`
	Reports     []*contracts.Report            `json:"reports"`
	Skipped     []contracts.Skip               `json:"skipped"`
	Quality     *contracts.DataQualitySnapshot `json:"quality,omitempty"`
}

// NewDocument builds a Document from a finished run
func NewDocument(title string, res *brain.RunResult) *Document {
	return &Document{
		Title:       title,
		RunID:       res.RunID,
		GeneratedAt: res.StartedAt,
		BondYield:   res.BondYield,
		Ranking:     res.Ranking,
		Reports:     res.Reports,
		Skipped:     res.Skipped,
		Quality:     res.Quality,
	}
}

// Report returns the per-stock report for code
func (d *Document) Report(code string) *contracts.Report {
	for _, r := range d.Reports {
		if r.Code == code {
			return r
		}
	}
	return nil
}

// Format names accepted by Render
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats lists every supported output format
func Formats() []string {
	return []string{FormatTable, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON}
}

// Ext returns the file extension for a format
func Ext(format string) string {
	switch format {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}
