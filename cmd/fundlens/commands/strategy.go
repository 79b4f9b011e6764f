package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/config"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "strategy.yaml 관리",
}

var strategyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "strategy.yaml 검증",
	Long: `strategy.yaml을 읽어 필수 제약을 검증하고 경고와 해시를 출력합니다.
검증 실패 시 종료 코드 1.

Example:
  go run ./cmd/fundlens strategy validate
  go run ./cmd/fundlens strategy validate --strategy ./configs/strategy.yaml`,
	RunE: runStrategyValidate,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyValidateCmd)
}

func runStrategyValidate(cmd *cobra.Command, args []string) error {
	path := strategyPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.StrategyPath
	}

	PrintHeader("Strategy: " + path)

	// Load은 디코딩 후 Validate까지 수행
	s, raw, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := strategyconfig.Hash(s)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	PrintKeyValue("ID", s.Meta.StrategyID+" v"+s.Meta.Version, 12)
	PrintKeyValue("Hash", hash, 12)
	PrintKeyValue("Size", fmt.Sprintf("%d bytes", len(raw)), 12)
	PrintKeyValue("Timezone", s.Meta.Timezone, 12)
	PrintKeyValue("Max Batch", fmt.Sprintf("%d", s.Universe.MaxBatch), 12)
	PrintKeyValue("Whitelist", fmt.Sprintf("%d stocks", len(s.Universe.Stocks)), 12)
	if excluded := s.Universe.Excluded(); len(excluded) > 0 {
		PrintKeyValue("Excluded", strings.Join(excluded, ", "), 12)
	}
	if w := s.Watchlist; w.Enabled {
		PrintKeyValue("Watchlist", fmt.Sprintf("%s @ %s -> %s", strings.Join(w.Codes, ","), w.Schedule, strings.Join(w.Formats, ",")), 12)
	}
	PrintSeparator()

	warnings := strategyconfig.Warn(s)
	if len(warnings) == 0 {
		PrintSuccess("Valid")
		return nil
	}
	items := make([]string, len(warnings))
	for i, w := range warnings {
		items[i] = w.Code + ": " + w.Message
	}
	PrintList(items)
	PrintSuccess(fmt.Sprintf("Valid with %d warnings", len(warnings)))
	return nil
}
