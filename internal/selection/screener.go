package selection

import (
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/pkg/logger"
)

// Screener applies optional hard cuts to a ranking
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines hard cut conditions. Zero values disable a cut.
type ScreenerConfig struct {
	MinMasterScore   float64 // 예: 70
	MinUpsidePct     float64 // 예: 10 (%)
	RequireValuation bool    // 밸류에이션 없는 종목 제외
	TopN             int
}

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, logger *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: logger,
	}
}

// Screen keeps rows passing every cut, preserving order and original ranks.
func (s *Screener) Screen(ranked []contracts.RankedReport) []contracts.RankedReport {
	passed := make([]contracts.RankedReport, 0, len(ranked))
	filtered := make(map[string]int) // Filter name -> count

	for _, r := range ranked {
		if reason := s.checkConditions(r); reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, r)
		if s.config.TopN > 0 && len(passed) == s.config.TopN {
			break
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input": len(ranked),
		"passed":      len(passed),
		"filters":     filtered,
	}).Debug("Screening completed")

	return passed
}

// checkConditions returns the first failed cut, "" when the row passes
func (s *Screener) checkConditions(r contracts.RankedReport) string {
	if s.config.RequireValuation && r.IntrinsicValue <= 0 {
		return "valuation"
	}
	if r.MasterScore < s.config.MinMasterScore {
		return "master_score"
	}
	if s.config.MinUpsidePct != 0 && r.UpsidePct < s.config.MinUpsidePct {
		return "upside"
	}
	return ""
}
