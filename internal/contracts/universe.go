package contracts

import "time"

// Universe is the screened batch passed from S1 to S2
// ⭐ SSOT: S1 → S2 분석 대상 종목 전달
type Universe struct {
	Date       time.Time            `json:"date"`
	Stocks     []string             `json:"stocks"`             // 분석 대상 종목 코드 (요청 순서 유지)
	Excluded   map[string]string    `json:"excluded"`           // 제외 종목: 사유
	Warnings   map[string]string    `json:"warnings,omitempty"` // 분석은 계속하되 경고
	Meta       map[string]StockInfo `json:"meta,omitempty"`     // 화이트리스트 메타데이터
	TotalCount int                  `json:"total_count,omitempty"`
}

// IsExcluded reports whether S1 rejected code, with the whitelist note
func (u *Universe) IsExcluded(code string) (bool, string) {
	reason, exists := u.Excluded[code]
	return exists, reason
}

// Count returns the number of stocks to analyze
func (u *Universe) Count() int {
	return len(u.Stocks)
}

