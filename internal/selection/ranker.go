package selection

import (
	"context"
	"sort"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
	"github.com/wonny/fundlens/pkg/logger"
)

// Ranker implements S6: ordering by intrinsic value
// ⭐ SSOT: S6 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank sorts reports by intrinsic value (descending) and assigns 1-based ranks.
// Reports without a valuation sort last; ties fall back to Master Score, then code.
func (r *Ranker) Rank(ctx context.Context, reports []*contracts.Report) ([]contracts.RankedReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]contracts.RankedReport, 0, len(reports))
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		ranked = append(ranked, row(rep))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IntrinsicValue != b.IntrinsicValue {
			return a.IntrinsicValue > b.IntrinsicValue
		}
		if a.MasterScore != b.MasterScore {
			return a.MasterScore > b.MasterScore
		}
		return a.Code < b.Code
	})

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total_stocks": len(ranked),
			"top_code":     ranked[0].Code,
			"top_value":    ranked[0].IntrinsicValue,
		}).Info("Ranking completed")
	}

	return ranked, nil
}

// row flattens a report into a ranking row
func row(rep *contracts.Report) contracts.RankedReport {
	out := contracts.RankedReport{
		Code:             rep.Code,
		Name:             rep.Name,
		Industry:         rep.Industry,
		Price:            rep.Price,
		MasterScore:      rep.MasterScore(),
		ValuationVerdict: "unavailable",
	}
	if g := rep.Growth; g != nil {
		out.GrowthScore = g.Score
		out.State = g.State
	}
	if p := rep.Profit; p != nil {
		out.ProfitScore = p.Score
		out.FourQ = p.FourQ
	}
	if rt := rep.Return; rt != nil {
		out.ReturnScore = rt.Score
		out.Verdict = rt.Verdict
	}
	if v := rep.Valuation; v != nil {
		out.IntrinsicValue = v.IntrinsicValue
		out.FairPrice = v.FairPrice
		out.ValuationVerdict = v.Verdict
		out.UpsidePct = scoring.Round(rep.UpsidePct(), 1)
	}
	return out
}

var _ contracts.Ranker = (*Ranker)(nil)
