package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/report"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/selection"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [codes...]",
	Short: "종목 배치 분석 (S0~S6)",
	Long: `요청 종목을 S0~S6 파이프라인으로 분석하고 랭킹과 종목별 리포트를 출력합니다.

종목 코드를 생략하면 화이트리스트에서 대화형으로 선택합니다.
한 배치는 strategy.yaml의 universe.max_batch (기본 5) 종목까지.

Formats:
  table     - 터미널 카드 (기본)
  csv       - 랭킹 표 (UTF-8 BOM, Excel 호환)
  markdown  - 전체 리포트
  html      - 전체 리포트 (단일 페이지)
  json      - 원본 결과

Example:
  go run ./cmd/fundlens analyze 2330 2454 2317
  go run ./cmd/fundlens analyze 2330,2454 --format csv --out ranking.csv
  go run ./cmd/fundlens analyze --offline 2330
  go run ./cmd/fundlens analyze 2330 2454 --min-score 70 --top 1`,
	RunE: runAnalyze,
}

var (
	analyzeFormat       string
	analyzeOut          string
	analyzeQuiet        bool
	analyzeMinScore     float64
	analyzeMinUpside    float64
	analyzeRequireValue bool
	analyzeTop          int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", report.FormatTable, "output format ("+strings.Join(report.Formats(), "|")+")")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "write output to file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "do not stream the run log")
	analyzeCmd.Flags().Float64Var(&analyzeMinScore, "min-score", 0, "drop stocks below this Master Score")
	analyzeCmd.Flags().Float64Var(&analyzeMinUpside, "min-upside", 0, "drop stocks below this upside (%)")
	analyzeCmd.Flags().BoolVar(&analyzeRequireValue, "require-valuation", false, "drop stocks without a valuation")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "keep only the top N after screening")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if !validFormat(analyzeFormat) {
		return fmt.Errorf("unknown format %q (want one of %v)", analyzeFormat, report.Formats())
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	codes := s1_universe.ParseCodes(strings.Join(args, " "))
	if len(codes) == 0 {
		if codes, err = promptForCodes(a.strategy); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tee contracts.LogSink
	if !analyzeQuiet {
		tee = stderrSink()
	}

	res, runErr := a.orch.Run(ctx, codes, tee)
	if runErr != nil && (res == nil || !res.Incomplete) {
		return runErr
	}
	if runErr != nil {
		PrintWarning(fmt.Sprintf("Run interrupted, showing %d completed stocks", len(res.Reports)))
	}

	doc := report.NewDocument("Fundamental Analysis", res)
	if analyzeMinScore > 0 || analyzeMinUpside != 0 || analyzeRequireValue || analyzeTop > 0 {
		screenDocument(doc, selection.NewScreener(selection.ScreenerConfig{
			MinMasterScore:   analyzeMinScore,
			MinUpsidePct:     analyzeMinUpside,
			RequireValuation: analyzeRequireValue,
			TopN:             analyzeTop,
		}, a.log))
	}

	if err := writeOutput(doc, analyzeFormat, analyzeOut); err != nil {
		return err
	}

	if analyzeOut != "" {
		runSummary(res)
		PrintSuccess(fmt.Sprintf("Wrote %s (%d stocks, run %s)", analyzeOut, len(doc.Ranking), res.RunID))
	}
	if runErr != nil {
		return runErr
	}
	// 전 종목 스킵이면 종료 코드 1 (cron, 스크립트용)
	return res.NothingAnalyzed()
}

// screenDocument keeps only the rows (and their reports) passing the screener
func screenDocument(doc *report.Document, s *selection.Screener) {
	doc.Ranking = s.Screen(doc.Ranking)

	keep := make(map[string]bool, len(doc.Ranking))
	for _, r := range doc.Ranking {
		keep[r.Code] = true
	}
	reports := doc.Reports[:0:0]
	for _, r := range doc.Reports {
		if keep[r.Code] {
			reports = append(reports, r)
		}
	}
	doc.Reports = reports
}

func writeOutput(doc *report.Document, format, out string) error {
	var w io.Writer = os.Stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return report.Render(w, doc, format)
}

func validFormat(format string) bool {
	for _, f := range report.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// runSummary prints the run header after a file export
func runSummary(res *brain.RunResult) {
	PrintDoubleSeparator()
	PrintKeyValue("Run ID", res.RunID, 10)
	PrintKeyValue("US 10Y", fmt.Sprintf("%.2f%%", res.BondYield), 10)
	PrintKeyValue("Analyzed", fmt.Sprintf("%d", len(res.Reports)), 10)
	PrintKeyValue("Skipped", fmt.Sprintf("%d", len(res.Skipped)), 10)
	PrintKeyValue("Duration", res.Duration.Round(time.Millisecond).String(), 10)
	PrintDoubleSeparator()
}
