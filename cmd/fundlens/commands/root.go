package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyPath string
	offline      bool
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundlens",
	Short: "fundlens - 대만 상장주 펀더멘털 진단 및 밸류에이션",
	Long: `fundlens Unified CLI

월매출 성장, 이익률, ROE/EPS, PER 밴드로 대만 종목을 진단합니다.
S0 데이터 → S1 유니버스 → S2 성장 → S3 수익성 → S4 주주수익 → S5 밸류에이션 → S6 랭킹

Usage:
  go run ./cmd/fundlens [command]

Examples:
  go run ./cmd/fundlens analyze 2330 2454
  go run ./cmd/fundlens analyze --format html --out reports/today.html
  go run ./cmd/fundlens serve
  go run ./cmd/fundlens data-check 2330`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy file (default: $STRATEGY_PATH or config/strategy.yaml)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use built-in sample data instead of the providers")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
