package s0_data

import "time"

// Lookback windows per series, relative to the run date.
const (
	RevenueYears          = 3
	StatementYears        = 3
	AnnualYears           = 6
	DefaultValuationYears = 5
	PriceLookbackDays     = 10
	BondLookbackDays      = 30
	DefaultNewsDays       = 90
	NewsLimit             = 10
)

func jan1(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// RevenueStart is the first month fetched for the revenue series.
func RevenueStart(now time.Time) time.Time { return jan1(now.Year() - RevenueYears) }

// StatementStart is the first quarter fetched for margins.
func StatementStart(now time.Time) time.Time { return jan1(now.Year() - StatementYears) }

// AnnualStart is the first quarter fetched for the annual ROE/EPS table.
func AnnualStart(now time.Time) time.Time { return jan1(now.Year() - AnnualYears) }

// ValuationStart is the first day of the PE/PBR window.
func ValuationStart(now time.Time, years int) time.Time {
	if years <= 0 {
		years = DefaultValuationYears
	}
	return now.AddDate(0, 0, -365*years)
}

// PriceStart covers weekends and holidays before the latest close.
func PriceStart(now time.Time) time.Time { return now.AddDate(0, 0, -PriceLookbackDays) }

// BondStart is the first day searched for the latest bond yield.
func BondStart(now time.Time) time.Time { return now.AddDate(0, 0, -BondLookbackDays) }

// NewsStart is the first day of the headline window.
func NewsStart(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultNewsDays
	}
	return now.AddDate(0, 0, -days)
}
