package s5_valuation

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
)

const (
	// WinsorQuantile clips the PE history before computing statistics.
	WinsorQuantile = 0.95

	// MaxSustainableROE caps ROE in the intrinsic value model.
	MaxSustainableROE = 0.25

	compoundYears = 10
)

// Analyzer derives PE price bands and a compounding intrinsic value
// ⭐ SSOT: 밸류에이션 (PE 밴드 + 내재가치) 은 여기서만
type Analyzer struct {
	sink contracts.LogSink
}

// NewAnalyzer creates a valuation analyzer that reports progress to sink.
func NewAnalyzer(sink contracts.LogSink) *Analyzer {
	if sink == nil {
		sink = contracts.Discard
	}
	return &Analyzer{sink: sink}
}

// Analyze computes the valuation. It returns contracts.ErrValuationUnavailable
// when the history is empty or holds no positive PE; callers keep the rest of
// the report in that case.
func (a *Analyzer) Analyze(code string, in contracts.ValuationInput) (*contracts.ValuationResult, error) {
	if len(in.History) == 0 {
		contracts.Logf(a.sink, "[valuation] ❌ no history, skipping valuation")
		return nil, fmt.Errorf("valuation %s: empty history: %w", code, contracts.ErrValuationUnavailable)
	}

	rows := make([]contracts.ValuationPoint, len(in.History))
	copy(rows, in.History)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	pe := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.PE > 0 && !math.IsInf(r.PE, 0) {
			pe = append(pe, r.PE)
		}
	}
	if len(pe) == 0 {
		contracts.Logf(a.sink, "[valuation] ⚠️ no positive PE in history, skipping valuation")
		return nil, fmt.Errorf("valuation %s: no positive PE: %w", code, contracts.ErrValuationUnavailable)
	}

	clipped, limit := scoring.Winsorize(pe, WinsorQuantile)
	mean := scoring.Round2(scoring.Mean(clipped))
	std := scoring.StdDev(clipped)

	latest := rows[len(rows)-1]
	price := in.Price

	v := &contracts.ValuationResult{
		Code:       code,
		Price:      price,
		CurrentPE:  scoring.Round2(latest.PE),
		CurrentPBR: latest.PBR,
		ForwardEPS: in.ForwardEPS,
		BondYield:  in.BondYield,
		PEMax:      scoring.Round2(scoring.Max(clipped)),
		PEMin:      scoring.Round2(scoring.Min(clipped)),
		PEMean:     mean,
		PEStd:      std,
		PECap:      limit,
		PEPoints:   len(clipped),
	}
	if v.CurrentPE > 0 {
		v.ImpliedEPS = price / v.CurrentPE
	}
	if latest.PBR > 0 {
		v.BookValue = scoring.Round2(price / latest.PBR)
	}

	// 예상 EPS 가 0 이하이면 밴드가 역전되므로 0 으로 둔다
	if in.ForwardEPS > 0 {
		v.CheapPrice = scoring.Round2((mean - std) * in.ForwardEPS)
		v.FairPrice = scoring.Round2(mean * in.ForwardEPS)
		v.ExpensivePrice = scoring.Round2((mean + std) * in.ForwardEPS)
	} else {
		contracts.Logf(a.sink, "[valuation] forward EPS %.2f <= 0, price bands set to 0", in.ForwardEPS)
	}

	roe := 0.0
	if n := len(in.Annual); n > 0 {
		annual := make([]contracts.AnnualReturn, n)
		copy(annual, in.Annual)
		sort.SliceStable(annual, func(i, j int) bool { return annual[i].Year < annual[j].Year })
		roe = annual[n-1].ROE
	}
	roe = math.Min(roe, MaxSustainableROE)
	v.IntrinsicValue = scoring.Round2(v.BookValue * math.Pow(1+(roe-in.BondYield/100), compoundYears))

	v.Verdict = Verdict.Eval(Position{
		Price:     price,
		Cheap:     v.CheapPrice,
		Fair:      v.FairPrice,
		Expensive: v.ExpensivePrice,
		Intrinsic: v.IntrinsicValue,
	})

	contracts.Logf(a.sink, "[valuation] PE winsorized at p95 (%.2f), %d points", limit, len(clipped))
	contracts.Logf(a.sink, "[valuation] cheap: %.2f, fair: %.2f, expensive: %.2f", v.CheapPrice, v.FairPrice, v.ExpensivePrice)
	contracts.Logf(a.sink, "[valuation] intrinsic value: %.2f -> %s", v.IntrinsicValue, v.Verdict)

	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, contracts.ErrMalformedSeries)
	}
	return v, nil
}
