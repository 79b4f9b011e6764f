package s0_data

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
)

// Statement item types used by the preparation step.
const (
	ItemRevenue         = "Revenue"
	ItemGrossProfit     = "GrossProfit"
	ItemOperatingIncome = "OperatingIncome"
	ItemEPS             = "EPS"
	// ItemParentEquity is net income attributable to the parent on the income
	// statement and total parent equity on the balance sheet.
	ItemParentEquity = "EquityAttributableToOwnersOfParent"
)

const (
	// MinRevenueMonths is the minimum raw history needed to compute a year of YoY.
	MinRevenueMonths = 24

	// ProfitQuarters is how many trailing quarters the margin series keeps.
	ProfitQuarters = 8
)

// MonthlyRevenue is one raw monthly revenue row.
type MonthlyRevenue struct {
	Year    int
	Month   int
	Revenue float64
}

// StatementItem is one raw financial statement line (long format).
type StatementItem struct {
	Date  time.Time
	Type  string
	Value float64
}

// BuildRevenueSeries computes monthly and cumulative YoY.
// ⭐ SSOT: 월매출 → YoY / 누적 YoY 가공은 여기서만
//
// YoY compares against the same calendar month of the prior year; a missing
// or zero prior month leaves the ratio NaN.
func BuildRevenueSeries(rows []MonthlyRevenue) ([]contracts.RevenuePoint, error) {
	if len(rows) < MinRevenueMonths {
		return nil, fmt.Errorf("revenue: %d months < %d: %w", len(rows), MinRevenueMonths, contracts.ErrInsufficientData)
	}

	sorted := make([]MonthlyRevenue, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})

	type ym struct{ y, m int }
	out := make([]contracts.RevenuePoint, 0, len(sorted))
	index := make(map[ym]int, len(sorted))

	cum := 0.0
	curYear := 0
	for _, r := range sorted {
		key := ym{r.Year, r.Month}
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("revenue: duplicate month %04d-%02d: %w", r.Year, r.Month, contracts.ErrMalformedSeries)
		}
		if r.Year != curYear {
			curYear, cum = r.Year, 0
		}
		cum += r.Revenue

		index[key] = len(out)
		out = append(out, contracts.RevenuePoint{
			Date:       time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC),
			Revenue:    r.Revenue,
			CumRevenue: cum,
			MonthYoY:   math.NaN(),
			CumYoY:     math.NaN(),
		})
	}

	for i := range out {
		p := &out[i]
		j, ok := index[ym{p.Date.Year() - 1, int(p.Date.Month())}]
		if !ok {
			continue
		}
		prior := out[j]
		if prior.Revenue != 0 {
			p.MonthYoY = scoring.Round3(p.Revenue/prior.Revenue - 1)
		}
		if prior.CumRevenue != 0 {
			p.CumYoY = scoring.Round3(p.CumRevenue/prior.CumRevenue - 1)
		}
	}

	return out, nil
}

// pivot turns long-format statement items into date → type → value,
// averaging duplicates.
func pivot(items []StatementItem) (map[time.Time]map[string]float64, []time.Time) {
	sums := make(map[time.Time]map[string]float64)
	counts := make(map[time.Time]map[string]int)

	for _, it := range items {
		d := it.Date.UTC().Truncate(24 * time.Hour)
		if sums[d] == nil {
			sums[d] = make(map[string]float64)
			counts[d] = make(map[string]int)
		}
		sums[d][it.Type] += it.Value
		counts[d][it.Type]++
	}

	dates := make([]time.Time, 0, len(sums))
	for d, row := range sums {
		for k := range row {
			row[k] /= float64(counts[d][k])
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return sums, dates
}

func lookup(row map[string]float64, key string) float64 {
	if v, ok := row[key]; ok {
		return v
	}
	return math.NaN()
}

func ratio(num, den float64) float64 {
	if math.IsNaN(num) || math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return scoring.Round(num/den, 4)
}

// BuildProfitSeries derives gross and operating margins from the income
// statement and keeps the trailing ProfitQuarters quarters.
// ⭐ SSOT: 손익계산서 → GPM / OPM 가공은 여기서만
//
// Quarters missing a line item carry NaN margins, which the profit analyzer
// rejects as malformed.
func BuildProfitSeries(income []StatementItem) []contracts.ProfitPoint {
	rows, dates := pivot(income)

	out := make([]contracts.ProfitPoint, 0, len(dates))
	for _, d := range dates {
		row := rows[d]
		rev := lookup(row, ItemRevenue)
		out = append(out, contracts.ProfitPoint{
			Date:            d,
			GrossMargin:     ratio(lookup(row, ItemGrossProfit), rev),
			OperatingMargin: ratio(lookup(row, ItemOperatingIncome), rev),
		})
	}

	if len(out) > ProfitQuarters {
		out = out[len(out)-ProfitQuarters:]
	}
	return out
}

// BuildAnnualReturns annualizes quarterly net income and EPS per calendar year
// and computes ROE over a multi-point average equity.
// ⭐ SSOT: 분기 재무 → 연간 ROE / EPS 가공은 여기서만
//
// A year with q reported quarters is scaled by 4/q. Average equity is the mean
// of the prior year's last reported equity and every equity reported this year.
func BuildAnnualReturns(income, balance []StatementItem) []contracts.AnnualReturn {
	inc, incDates := pivot(income)
	bal, balDates := pivot(balance)

	// outer merge on date
	seen := make(map[time.Time]bool, len(incDates)+len(balDates))
	var dates []time.Time
	for _, d := range append(incDates, balDates...) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	type quarter struct {
		date   time.Time
		ni     float64
		eps    float64
		equity float64
	}
	byYear := make(map[int][]quarter)
	var years []int
	for _, d := range dates {
		y := d.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], quarter{
			date:   d,
			ni:     lookup(inc[d], ItemParentEquity),
			eps:    lookup(inc[d], ItemEPS),
			equity: lookup(bal[d], ItemParentEquity),
		})
	}

	out := make([]contracts.AnnualReturn, 0, len(years))
	for i, y := range years {
		qs := byYear[y]
		q := len(qs)
		factor := 4 / float64(q)

		var ni, eps float64
		points := make([]float64, 0, q+1)
		if i > 0 {
			prev := byYear[years[i-1]]
			if last := prev[len(prev)-1].equity; !math.IsNaN(last) {
				points = append(points, last)
			}
		}
		for _, qt := range qs {
			if !math.IsNaN(qt.ni) {
				ni += qt.ni
			}
			if !math.IsNaN(qt.eps) {
				eps += qt.eps
			}
			if !math.IsNaN(qt.equity) {
				points = append(points, qt.equity)
			}
		}

		projectedNI := ni * factor
		avgEquity := scoring.Mean(points)

		out = append(out, contracts.AnnualReturn{
			Year:             y,
			Date:             qs[q-1].date,
			NetIncome:        projectedNI,
			EPS:              scoring.Round2(eps * factor),
			ROE:              scoring.SafeDiv(projectedNI, avgEquity, 0),
			QuartersReported: q,
			AvgPointsUsed:    len(points),
			Projected:        q < 4,
		})
	}

	return out
}

// BuildValuationHistory keeps the first row seen per date, then sorts by date.
func BuildValuationHistory(rows []contracts.ValuationPoint) []contracts.ValuationPoint {
	out := make([]contracts.ValuationPoint, 0, len(rows))
	seen := make(map[time.Time]bool, len(rows))
	for _, r := range rows {
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DedupNews keeps the newest item per title, newest first, at most limit
// items. A limit <= 0 keeps every unique title.
func DedupNews(items []contracts.NewsItem, limit int) []contracts.NewsItem {
	if limit <= 0 {
		limit = len(items)
	}
	sorted := make([]contracts.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	seen := make(map[string]bool, len(sorted))
	out := make([]contracts.NewsItem, 0, limit)
	for _, n := range sorted {
		if n.Title == "" || seen[n.Title] {
			continue
		}
		seen[n.Title] = true
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}
