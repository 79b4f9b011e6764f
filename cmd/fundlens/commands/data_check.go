package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s1_universe"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check [codes...]",
	Short: "종목별 데이터 수집 상태 확인",
	Long: `분석 없이 S0 수집과 품질 게이트만 실행합니다.

확인 항목:
- 월매출 (YoY 계산용, 12개월+)
- 분기 이익률 (4분기+)
- 연간 ROE/EPS (4년+)
- PER 이력 (밸류에이션 밴드용)
- 현재가, 뉴스

종목 코드를 생략하면 strategy.yaml의 watchlist 종목을 확인합니다.

Example:
  go run ./cmd/fundlens data-check
  go run ./cmd/fundlens data-check 2330 2454`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	codes := s1_universe.ParseCodes(strings.Join(args, " "))
	if len(codes) == 0 {
		codes = s1_universe.Normalize(a.strategy.Watchlist.Codes)
	}
	if len(codes) == 0 {
		return fmt.Errorf("no codes given and the watchlist is empty")
	}

	PrintHeader("fundlens Data Check")
	PrintKeyValue("Source", dataSourceName(a.cfg), 8)
	PrintKeyValue("Codes", strings.Join(codes, ", "), 8)
	if a.db != nil {
		st := a.db.Stats()
		PrintKeyValue("DB Pool", fmt.Sprintf("%d/%d conns", st.TotalConns, st.MaxConns), 8)
	}
	fmt.Println()

	ctx := context.Background()
	fetched := a.collector.CollectAll(ctx, codes, collector.Config{Workers: a.strategy.Analysis.Concurrency})

	widths := []int{6, 16, 8, 8, 6, 6, 6, 5}
	PrintTableHeader([]string{"Code", "Name", "Revenue", "Margins", "Years", "PE", "Price", "News"}, widths)

	batch := make([]*contracts.StockData, 0, len(fetched))
	var failures, warnings []string
	for _, f := range fetched {
		if f.Error != nil {
			PrintTableRow([]string{f.StockCode, "-", "-", "-", "-", "-", "-", "-"}, widths)
			failures = append(failures, fmt.Sprintf("%s: %v", f.StockCode, f.Error))
			continue
		}
		d := f.Data
		batch = append(batch, d)

		price := "no"
		if d.Quote != nil {
			price = fmt.Sprintf("%.1f", d.Quote.Close)
		}
		PrintTableRow([]string{
			f.StockCode,
			d.Info.Name,
			fmt.Sprintf("%dm", len(d.Revenue)),
			fmt.Sprintf("%dq", len(d.Profit)),
			fmt.Sprintf("%dy", len(d.Annual)),
			fmt.Sprintf("%d", len(d.Valuation)),
			price,
			fmt.Sprintf("%d", len(d.News)),
		}, widths)
		for _, w := range d.Warnings {
			warnings = append(warnings, f.StockCode+": "+w)
		}
	}
	fmt.Println()

	if len(warnings) > 0 {
		fmt.Println("Warnings:")
		PrintList(warnings)
	}
	for _, msg := range failures {
		PrintError(msg)
	}
	if len(batch) == 0 {
		return fmt.Errorf("no stock collected (%d failed)", len(failures))
	}

	snapshot, err := a.gate.Check(ctx, batch)
	if err != nil {
		return fmt.Errorf("quality check: %w", err)
	}
	printQuality(snapshot)
	return nil
}

func printQuality(s *contracts.DataQualitySnapshot) {
	PrintDoubleSeparator()
	PrintKeyValue("Valid", fmt.Sprintf("%d / %d", s.ValidStocks, s.TotalStocks), 14)
	PrintKeyValue("Quality Score", fmt.Sprintf("%.2f", s.QualityScore), 14)

	series := make([]string, 0, len(s.Coverage))
	for name := range s.Coverage {
		series = append(series, name)
	}
	sort.Strings(series)
	for _, name := range series {
		PrintKeyValue("  "+name, fmt.Sprintf("%.0f%%", s.Coverage[name]*100), 14)
	}

	codes := make([]string, 0, len(s.Issues))
	for code := range s.Issues {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("   %s\n", code)
		PrintList(s.Issues[code])
	}
	PrintDoubleSeparator()

	if s.Passed {
		PrintSuccess("Quality gate passed")
	} else {
		PrintWarning("Quality gate failed, scores may rest on thin data")
	}
}
