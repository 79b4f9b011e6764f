package strategyconfig

import "sort"

// Config는 분석 전략의 전체 설정 (config/strategy.yaml)
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Analysis  Analysis  `yaml:"analysis" json:"analysis"`
	Watchlist Watchlist `yaml:"watchlist" json:"watchlist"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Universe S1: 분석 가능 종목 화이트리스트
type Universe struct {
	MaxBatch int                   `yaml:"max_batch" json:"max_batch"`
	Stocks   map[string]StockEntry `yaml:"stocks" json:"stocks"`
}

// StockEntry is one whitelisted ticker.
type StockEntry struct {
	Name      string `yaml:"name" json:"name"`
	Industry  string `yaml:"industry" json:"industry"`
	Recommend *bool  `yaml:"recommend,omitempty" json:"recommend,omitempty"` // 생략 시 true
	Note      string `yaml:"note,omitempty" json:"note,omitempty"`
}

// IsRecommended reports whether the model applies to this industry.
func (e StockEntry) IsRecommended() bool {
	return e.Recommend == nil || *e.Recommend
}

// Analysis S0/S5 파라미터
type Analysis struct {
	ValuationYears  int     `yaml:"valuation_years" json:"valuation_years"`
	NewsDays        int     `yaml:"news_days" json:"news_days"`
	MinQualityScore float64 `yaml:"min_quality_score" json:"min_quality_score"`
	Concurrency     int     `yaml:"concurrency" json:"concurrency"`
}

// Watchlist 정기 분석 대상
type Watchlist struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	Schedule string   `yaml:"schedule" json:"schedule"` // cron (분 시 일 월 요일)
	Codes    []string `yaml:"codes" json:"codes"`
	Formats  []string `yaml:"formats" json:"formats"` // csv, html, markdown
}

// Export formats accepted by watchlist.formats
const (
	FormatCSV      = "csv"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Default returns the settings used when no strategy file exists.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "tw_fundamental_v1",
			Version:    "1",
			Timezone:   "Asia/Taipei",
		},
		Universe: Universe{
			MaxBatch: 5,
			Stocks:   map[string]StockEntry{},
		},
		Analysis: Analysis{
			ValuationYears:  5,
			NewsDays:        90,
			MinQualityScore: 0.7,
			Concurrency:     3,
		},
		Watchlist: Watchlist{
			Schedule: "30 18 * * 1-5",
			Formats:  []string{FormatCSV, FormatHTML},
		},
	}
}

// Lookup returns the whitelist entry for code.
func (c *Config) Lookup(code string) (StockEntry, bool) {
	e, ok := c.Universe.Stocks[code]
	return e, ok
}

// Codes returns every whitelisted code, sorted.
func (u Universe) Codes() []string {
	codes := make([]string, 0, len(u.Stocks))
	for code := range u.Stocks {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Excluded returns the whitelisted codes flagged recommend: false.
func (u Universe) Excluded() []string {
	var out []string
	for _, code := range u.Codes() {
		if !u.Stocks[code].IsRecommended() {
			out = append(out, code)
		}
	}
	return out
}
