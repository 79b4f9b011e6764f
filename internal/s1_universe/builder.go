package s1_universe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/strategyconfig"
)

// DefaultMaxBatch is the per-request cap when none is configured.
const DefaultMaxBatch = 5

// NotWhitelistedWarning is attached to codes outside the whitelist.
const NotWhitelistedWarning = "not in the large-cap whitelist; fundamentals may be incomplete or volatile"

// Builder screens requested codes against the strategy whitelist
type Builder struct {
	config Config
	now    func() time.Time
}

// Config holds universe screening criteria
type Config struct {
	MaxBatch int
	Stocks   map[string]strategyconfig.StockEntry
}

// ConfigFrom extracts the S1 settings from the strategy file.
func ConfigFrom(cfg *strategyconfig.Config) Config {
	return Config{
		MaxBatch: cfg.Universe.MaxBatch,
		Stocks:   cfg.Universe.Stocks,
	}
}

// NewBuilder creates a new Universe Builder
func NewBuilder(config Config) *Builder {
	if config.MaxBatch < 1 {
		config.MaxBatch = DefaultMaxBatch
	}
	return &Builder{
		config: config,
		now:    time.Now,
	}
}

// MaxBatch returns the enforced batch cap.
func (b *Builder) MaxBatch() int {
	return b.config.MaxBatch
}

// Build screens codes in request order
// ⭐ SSOT: S1 → S2 유니버스 생성
//
// More than MaxBatch distinct codes fails the whole request with
// ErrBatchTooLarge before any stock is screened.
func (b *Builder) Build(ctx context.Context, codes []string) (*contracts.Universe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codes = Normalize(codes)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no stock codes: %w", contracts.ErrInsufficientData)
	}
	if len(codes) > b.config.MaxBatch {
		return nil, fmt.Errorf("%d stocks requested, limit is %d: %w", len(codes), b.config.MaxBatch, contracts.ErrBatchTooLarge)
	}

	universe := &contracts.Universe{
		Date:     b.now(),
		Stocks:   make([]string, 0, len(codes)),
		Excluded: make(map[string]string),
		Warnings: make(map[string]string),
		Meta:     make(map[string]contracts.StockInfo),
	}

	for _, code := range codes {
		info, warning, err := b.Screen(code)
		if err != nil {
			universe.Excluded[code] = err.Error()
			continue
		}
		if warning != "" {
			universe.Warnings[code] = warning
		} else {
			universe.Meta[code] = info
		}
		universe.Stocks = append(universe.Stocks, code)
	}

	universe.TotalCount = len(universe.Stocks)
	return universe, nil
}

// Screen checks a single code. A whitelisted code flagged recommend: false
// returns ErrNotRecommended; an unlisted code passes with a warning.
func (b *Builder) Screen(code string) (contracts.StockInfo, string, error) {
	entry, ok := b.config.Stocks[code]
	if !ok {
		return contracts.StockInfo{Code: code}, NotWhitelistedWarning, nil
	}

	info := contracts.StockInfo{Code: code, Name: entry.Name, Industry: entry.Industry}
	if !entry.IsRecommended() {
		return info, "", exclusionReason(entry)
	}
	return info, "", nil
}

// exclusionReason wraps ErrNotRecommended with the industry note
func exclusionReason(e strategyconfig.StockEntry) error {
	msg := fmt.Sprintf("industry %q: earnings do not track revenue, model not applicable", e.Industry)
	if e.Note != "" {
		msg += " (" + e.Note + ")"
	}
	return fmt.Errorf("%s: %w", msg, contracts.ErrNotRecommended)
}

// Normalize trims, drops blanks and de-duplicates codes, keeping first-seen order.
func Normalize(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ParseCodes splits "2330, 2454 2317" style input.
func ParseCodes(input string) []string {
	return Normalize(strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == ';'
	}))
}

var _ contracts.UniverseBuilder = (*Builder)(nil)
