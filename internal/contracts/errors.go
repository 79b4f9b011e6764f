package contracts

import "errors"

// ⭐ SSOT: 파이프라인 공통 에러는 여기서만 정의
var (
	// ErrInsufficientData means a series is shorter than a stage's minimum.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedSeries means a required column is missing or undefined.
	ErrMalformedSeries = errors.New("malformed series")

	// ErrValuationUnavailable means no positive PE history exists. Not fatal.
	ErrValuationUnavailable = errors.New("valuation unavailable")

	ErrBatchTooLarge  = errors.New("batch too large")
	ErrNotRecommended = errors.New("stock not recommended for analysis")
	ErrUnknownStock   = errors.New("unknown stock code")
	ErrSourceNotFound = errors.New("no data returned by source")

	// ErrNothingAnalyzed means every requested stock was skipped.
	ErrNothingAnalyzed = errors.New("no stock analyzed")
)
