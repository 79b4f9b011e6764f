package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 리포트, 스팬 이름에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5 → S6
//   Data  Universe  Growth  Profit  Return  Valuation  Ranking

// Stage represents a pipeline stage
type Stage string

const (
	// StageData S0: 데이터 수집 및 품질 검증
	// 책임: FinMind/PostgreSQL 수집, 시계열 가공, 품질 검증
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageUniverse S1: 분석 대상 종목
	// 책임: 화이트리스트 검사, 배치 상한
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageGrowth S2: 매출 성장 모멘텀
	// 위치: internal/s2_growth/
	StageGrowth Stage = "S2_GROWTH"

	// StageProfit S3: 이익 품질 (GPM/OPM)
	// 위치: internal/s3_profit/
	StageProfit Stage = "S3_PROFIT"

	// StageReturn S4: 주주수익 (ROE/EPS) + Master Score
	// 위치: internal/s4_return/
	StageReturn Stage = "S4_RETURN"

	// StageValuation S5: PE 밴드, 내재가치
	// 위치: internal/s5_valuation/
	StageValuation Stage = "S5_VALUATION"

	// StageRanking S6: 내재가치 기준 정렬, 상승여력
	// 위치: internal/selection/
	StageRanking Stage = "S6_RANKING"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageUniverse:
		return "S1"
	case StageGrowth:
		return "S2"
	case StageProfit:
		return "S3"
	case StageReturn:
		return "S4"
	case StageValuation:
		return "S5"
	case StageRanking:
		return "S6"
	default:
		return "UNKNOWN"
	}
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageData:
		return "data collection"
	case StageUniverse:
		return "whitelist screening"
	case StageGrowth:
		return "revenue momentum"
	case StageProfit:
		return "profit quality"
	case StageReturn:
		return "shareholder return"
	case StageValuation:
		return "valuation bands"
	case StageRanking:
		return "intrinsic value ranking"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageUniverse,
		StageGrowth,
		StageProfit,
		StageReturn,
		StageValuation,
		StageRanking,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
