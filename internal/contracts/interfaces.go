package contracts

import (
	"context"
	"time"
)

// FundamentalSource supplies the raw-to-prepared series for one ticker (S0)
// ⭐ SSOT: S0 데이터 소스 인터페이스 (FinMind, PostgreSQL)
type FundamentalSource interface {
	StockInfo(ctx context.Context, code string) (*StockInfo, error)
	MonthlyRevenue(ctx context.Context, code string) ([]RevenuePoint, error)
	Profitability(ctx context.Context, code string) ([]ProfitPoint, error)
	AnnualReturns(ctx context.Context, code string) ([]AnnualReturn, error)
	ValuationHistory(ctx context.Context, code string) ([]ValuationPoint, error)
	LatestPrice(ctx context.Context, code string) (*Quote, error)
	News(ctx context.Context, code string, since time.Time) ([]NewsItem, error)
}

// BondYieldSource supplies the US 10-year treasury yield in percent.
type BondYieldSource interface {
	TenYearYield(ctx context.Context) (float64, error)
}

// QualityGate checks series quality before analysis (S0)
// ⭐ SSOT: S0 데이터 품질 검증 인터페이스
type QualityGate interface {
	Check(ctx context.Context, batch []*StockData) (*DataQualitySnapshot, error)
}

// UniverseBuilder screens requested codes against the whitelist (S1)
// ⭐ SSOT: S1 유니버스 생성 인터페이스
type UniverseBuilder interface {
	Build(ctx context.Context, codes []string) (*Universe, error)
}

// GrowthAnalyzer diagnoses revenue momentum (S2)
type GrowthAnalyzer interface {
	Analyze(code string, revenue []RevenuePoint) (*GrowthResult, error)
}

// ProfitAnalyzer diagnoses margin quality (S3)
type ProfitAnalyzer interface {
	Analyze(code string, profit []ProfitPoint, growth *GrowthResult) (*ProfitResult, error)
}

// ReturnAnalyzer diagnoses shareholder return and computes the Master Score (S4)
type ReturnAnalyzer interface {
	Analyze(code string, annual []AnnualReturn, growth *GrowthResult, profit *ProfitResult) (*ReturnResult, error)
}

// ValuationInput carries everything S5 needs for one ticker.
type ValuationInput struct {
	History    []ValuationPoint
	Price      float64
	BondYield  float64 // percent
	ForwardEPS float64
	Annual     []AnnualReturn
}

// ValuationAnalyzer derives price-target bands and intrinsic value (S5)
type ValuationAnalyzer interface {
	Analyze(code string, in ValuationInput) (*ValuationResult, error)
}

// Ranker orders reports by intrinsic value (S6)
// ⭐ SSOT: S6 랭킹 인터페이스
type Ranker interface {
	Rank(ctx context.Context, reports []*Report) ([]RankedReport, error)
}
