package s0_data

import (
	"math"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
)

// SampleStock returns a complete, internally consistent data set for an
// offline run: revenue accelerating (10% then 20% YoY), margins widening every
// quarter, ROE climbing from 8% to 20%, and a 10~18x PE band.
// 데모 모드(--offline) 및 테스트 공용
func SampleStock(code, name string) *contracts.StockData {
	d := &contracts.StockData{
		Info: contracts.StockInfo{
			Code:     code,
			Name:     name,
			Industry: "Semiconductors",
			Market:   "twse",
		},
		BondYield: 4.0,
		FetchedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	// 24 months, YoY defined from the 13th
	start := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	tail := []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.2}
	for i := 0; i < 24; i++ {
		p := contracts.RevenuePoint{
			Date:     start.AddDate(0, i, 0),
			Revenue:  100,
			MonthYoY: math.NaN(),
			CumYoY:   math.NaN(),
		}
		if i >= 12 {
			p.MonthYoY = 0.1
			p.CumYoY = 0.117
		}
		if k := i - (24 - len(tail)); k >= 0 {
			p.MonthYoY = tail[k]
		}
		d.Revenue = append(d.Revenue, p)
	}

	gpm := []float64{0.20, 0.21, 0.22, 0.23, 0.24, 0.25}
	opm := []float64{0.02, 0.026, 0.032, 0.038, 0.044, 0.05}
	q := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
	for i := range opm {
		d.Profit = append(d.Profit, contracts.ProfitPoint{
			Date:            q.AddDate(0, 3*i, 0),
			GrossMargin:     gpm[i],
			OperatingMargin: opm[i],
		})
	}

	roe := []float64{0.08, 0.11, 0.14, 0.17, 0.20}
	eps := []float64{2, 2.5, 3, 3.6, 4.4}
	for i := range roe {
		d.Annual = append(d.Annual, contracts.AnnualReturn{
			Year:             2020 + i,
			Date:             time.Date(2020+i, 12, 31, 0, 0, 0, 0, time.UTC),
			EPS:              eps[i],
			ROE:              roe[i],
			QuartersReported: 4,
			AvgPointsUsed:    5,
		})
	}

	w := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for i, pe := range []float64{10, 12, 14, 16, 18} {
		d.Valuation = append(d.Valuation, contracts.ValuationPoint{
			Date: w.AddDate(0, 0, 7*i),
			PE:   pe,
			PBR:  2,
		})
	}

	d.Quote = &contracts.Quote{Date: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), Close: 60}
	d.News = []contracts.NewsItem{
		{Date: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), Title: name + " monthly revenue hits record", Source: "cnyes"},
		{Date: time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC), Title: name + " expands capacity", Source: "udn"},
	}

	return d
}

// SampleSource serves SampleStock for every given code.
func SampleSource(codes map[string]string) *MemorySource {
	m := NewMemorySource(4.0)
	for code, name := range codes {
		m.Put(SampleStock(code, name))
	}
	return m
}
