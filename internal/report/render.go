package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Render writes doc to w in the given format
// ⭐ SSOT: CLI/스케줄러 출력은 이 함수를 거침
func Render(w io.Writer, doc *Document, format string) error {
	switch format {
	case FormatTable, "":
		_, err := io.WriteString(w, Terminal(doc))
		return err
	case FormatCSV:
		return WriteRankingCSV(w, doc.Ranking)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatHTML:
		page, err := HTML(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format %q (want one of %v)", format, Formats())
	}
}
