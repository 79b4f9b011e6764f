package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/wonny/fundlens/internal/contracts"
)

// utf8BOM: Excel 호환 (utf-8-sig)
const utf8BOM = "\ufeff"

// WriteRankingCSV writes the ranking table (header from the csv struct tags)
func WriteRankingCSV(w io.Writer, rows []contracts.RankedReport) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	if rows == nil {
		rows = []contracts.RankedReport{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("marshal ranking csv: %w", err)
	}
	return nil
}
