package strategyconfig

import (
	"fmt"
	"regexp"

	"github.com/robfig/cron/v3"
)

// MaxBatchLimit caps universe.max_batch.
const MaxBatchLimit = 50

var codePattern = regexp.MustCompile(`^\d{4,6}[A-Z]?$`)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Universe ===
	if cfg.Universe.MaxBatch < 1 || cfg.Universe.MaxBatch > MaxBatchLimit {
		return ValidationError{"universe.max_batch", fmt.Sprintf("must be in [1, %d]", MaxBatchLimit)}
	}
	for _, code := range cfg.Universe.Codes() {
		if !ValidCode(code) {
			return ValidationError{fmt.Sprintf("universe.stocks[%s]", code), "not a TWSE/TPEx code"}
		}
		if cfg.Universe.Stocks[code].Name == "" {
			return ValidationError{fmt.Sprintf("universe.stocks[%s].name", code), "required"}
		}
	}

	// === Analysis ===
	a := cfg.Analysis
	if a.ValuationYears < 1 || a.ValuationYears > 10 {
		return ValidationError{"analysis.valuation_years", "must be in [1, 10]"}
	}
	if a.NewsDays < 1 {
		return ValidationError{"analysis.news_days", "must be >= 1"}
	}
	if a.MinQualityScore < 0 || a.MinQualityScore > 1 {
		return ValidationError{"analysis.min_quality_score", "must be in range [0, 1]"}
	}
	if a.Concurrency < 1 {
		return ValidationError{"analysis.concurrency", "must be >= 1"}
	}

	// === Watchlist ===
	w := cfg.Watchlist
	if w.Enabled {
		if _, err := cron.ParseStandard(w.Schedule); err != nil {
			return ValidationError{"watchlist.schedule", err.Error()}
		}
		if len(w.Codes) == 0 {
			return ValidationError{"watchlist.codes", "required when enabled"}
		}
	}
	if len(w.Codes) > cfg.Universe.MaxBatch {
		return ValidationError{"watchlist.codes", fmt.Sprintf("%d codes exceed max_batch=%d", len(w.Codes), cfg.Universe.MaxBatch)}
	}
	for i, code := range w.Codes {
		if !ValidCode(code) {
			return ValidationError{fmt.Sprintf("watchlist.codes[%d]", i), fmt.Sprintf("%q is not a TWSE/TPEx code", code)}
		}
	}
	for i, f := range w.Formats {
		switch f {
		case FormatCSV, FormatHTML, FormatMarkdown:
		default:
			return ValidationError{fmt.Sprintf("watchlist.formats[%d]", i), "must be csv, html or markdown"}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.Universe.Stocks) == 0 {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_WHITELIST",
			Message: "화이트리스트 비어 있음: 모든 종목이 경고와 함께 분석됨",
		})
	}

	for _, code := range cfg.Watchlist.Codes {
		e, ok := cfg.Lookup(code)
		switch {
		case !ok:
			warnings = append(warnings, Warning{
				Code:    "WATCHLIST_NOT_WHITELISTED",
				Message: fmt.Sprintf("%s: 화이트리스트에 없음", code),
			})
		case !e.IsRecommended():
			warnings = append(warnings, Warning{
				Code:    "WATCHLIST_NOT_RECOMMENDED",
				Message: fmt.Sprintf("%s: recommend=false, 매 실행마다 제외됨", code),
			})
		}
	}

	return warnings
}

// ValidCode reports whether code looks like a listed Taiwan ticker.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
