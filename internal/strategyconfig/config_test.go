package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	// 저장소 기본 전략 파일
	path := "../../config/strategy.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "tw_fundamental_v1" {
		t.Errorf("expected strategy_id=tw_fundamental_v1, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Universe.MaxBatch != 5 {
		t.Errorf("expected max_batch=5, got %d", cfg.Universe.MaxBatch)
	}

	tsmc, ok := cfg.Lookup("2330")
	if !ok || !tsmc.IsRecommended() {
		t.Errorf("2330 should be whitelisted and recommended, got %+v", tsmc)
	}
	fubon, ok := cfg.Lookup("2881")
	if !ok || fubon.IsRecommended() || fubon.Note == "" {
		t.Errorf("2881 should be excluded with a note, got %+v", fubon)
	}

	// 해시 생성
	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
universe:
  stocks:
    "2330": { name: TSMC, industry: Semiconductors }
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Universe.MaxBatch != 5 {
		t.Errorf("expected default max_batch=5, got %d", cfg.Universe.MaxBatch)
	}
	if cfg.Analysis.NewsDays != 90 {
		t.Errorf("expected default news_days=90, got %d", cfg.Analysis.NewsDays)
	}
	if cfg.Analysis.ValuationYears != 5 {
		t.Errorf("expected default valuation_years=5, got %d", cfg.Analysis.ValuationYears)
	}
	if len(cfg.Universe.Stocks) != 1 {
		t.Errorf("expected 1 stock, got %d", len(cfg.Universe.Stocks))
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Meta.StrategyID != Default().Meta.StrategyID {
		t.Errorf("empty document should yield defaults")
	}
}

func TestParse_UnknownField(t *testing.T) {
	// KnownFields(true): 오타는 즉시 실패
	_, err := Parse([]byte("universe:\n  max_bacth: 3\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), func(c *Config) {
		c.Analysis.NewsDays = 30
	})
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if found {
		t.Error("missing file reported as found")
	}
	if cfg.Universe.MaxBatch != 5 || cfg.Analysis.NewsDays != 30 {
		t.Errorf("expected defaults with fallback, got max_batch=%d news_days=%d", cfg.Universe.MaxBatch, cfg.Analysis.NewsDays)
	}

	// fallback 값도 검증 대상
	if _, _, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), func(c *Config) {
		c.Analysis.Concurrency = 0
	}); err == nil {
		t.Error("invalid fallback must fail validation")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("universe:\n  max_batch: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadOrDefault(bad, nil); err == nil {
		t.Error("invalid file must not fall back to defaults")
	}

	good := filepath.Join(t.TempDir(), "good.yaml")
	if err := os.WriteFile(good, []byte("universe:\n  max_batch: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, found, err = LoadOrDefault(good, func(c *Config) { c.Universe.MaxBatch = 9 })
	if err != nil || !found || cfg.Universe.MaxBatch != 3 {
		t.Errorf("file values must win over fallback, got found=%v max_batch=%d err=%v", found, cfg.Universe.MaxBatch, err)
	}
}

func TestValidate(t *testing.T) {
	no := false

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"zero batch", func(c *Config) { c.Universe.MaxBatch = 0 }, "universe.max_batch"},
		{"batch over limit", func(c *Config) { c.Universe.MaxBatch = MaxBatchLimit + 1 }, "universe.max_batch"},
		{"bad code", func(c *Config) { c.Universe.Stocks["TSMC"] = StockEntry{Name: "TSMC"} }, "universe.stocks[TSMC]"},
		{"missing name", func(c *Config) { c.Universe.Stocks["2330"] = StockEntry{Recommend: &no} }, "universe.stocks[2330].name"},
		{"valuation years", func(c *Config) { c.Analysis.ValuationYears = 0 }, "analysis.valuation_years"},
		{"news days", func(c *Config) { c.Analysis.NewsDays = 0 }, "analysis.news_days"},
		{"quality score", func(c *Config) { c.Analysis.MinQualityScore = 1.5 }, "analysis.min_quality_score"},
		{"concurrency", func(c *Config) { c.Analysis.Concurrency = 0 }, "analysis.concurrency"},
		{"bad schedule", func(c *Config) {
			c.Watchlist.Enabled = true
			c.Watchlist.Codes = []string{"2330"}
			c.Watchlist.Schedule = "every day"
		}, "watchlist.schedule"},
		{"enabled without codes", func(c *Config) { c.Watchlist.Enabled = true }, "watchlist.codes"},
		{"watchlist over batch", func(c *Config) {
			c.Watchlist.Codes = []string{"2330", "2454", "2317", "2382", "2308", "3711"}
		}, "watchlist.codes"},
		{"bad format", func(c *Config) { c.Watchlist.Formats = []string{"pdf"} }, "watchlist.formats[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %s, got %s (%s)", tt.field, ve.Field, ve.Message)
			}
		})
	}
}

func TestValidate_Default(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestWarn(t *testing.T) {
	no := false
	cfg := Default()
	cfg.Universe.Stocks["2330"] = StockEntry{Name: "TSMC"}
	cfg.Universe.Stocks["2881"] = StockEntry{Name: "Fubon Financial", Recommend: &no}
	cfg.Watchlist.Codes = []string{"2330", "2881", "2454"}

	warnings := Warn(cfg)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %+v", len(warnings), warnings)
	}
	if warnings[0].Code != "WATCHLIST_NOT_RECOMMENDED" || !strings.HasPrefix(warnings[0].Message, "2881") {
		t.Errorf("unexpected first warning %+v", warnings[0])
	}
	if warnings[1].Code != "WATCHLIST_NOT_WHITELISTED" {
		t.Errorf("unexpected second warning %+v", warnings[1])
	}

	if got := Warn(Default()); len(got) != 1 || got[0].Code != "EMPTY_WHITELIST" {
		t.Errorf("expected EMPTY_WHITELIST, got %+v", got)
	}
}

func TestUniverse_Excluded(t *testing.T) {
	no := false
	u := Universe{Stocks: map[string]StockEntry{
		"2603": {Name: "Evergreen Marine", Recommend: &no},
		"2330": {Name: "TSMC"},
		"1101": {Name: "Taiwan Cement", Recommend: &no},
	}}

	got := u.Excluded()
	if len(got) != 2 || got[0] != "1101" || got[1] != "2603" {
		t.Errorf("expected [1101 2603], got %v", got)
	}
}
