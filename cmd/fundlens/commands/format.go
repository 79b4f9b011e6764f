package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// 모든 커맨드가 같은 출력 포맷을 쓰도록 여기서만 스타일 정의.
// lipgloss는 터미널이 아니면 색을 자동으로 끈다 (파이프, 리다이렉트).

const ruleWidth = 59

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// PrintHeader prints a command title between a double and a single rule
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  " + titleStyle.Render(title))
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(ruleStyle.Render(strings.Repeat("─", ruleWidth)))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(ruleStyle.Render(strings.Repeat("═", ruleWidth)))
}

func PrintWarning(message string) {
	fmt.Println()
	fmt.Println(warnStyle.Render("⚠️  " + message))
	fmt.Println()
}

func PrintSuccess(message string) {
	fmt.Println(successStyle.Render("✅ " + message))
}

func PrintError(message string) {
	fmt.Println(errorStyle.Render("❌ " + message))
}

func PrintInfo(message string) {
	fmt.Println(infoStyle.Render("ℹ️  " + message))
}

// PrintTableHeader prints column titles and an underline spanning every column
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	total := 0
	for _, w := range widths {
		total += w
	}
	if len(widths) > 1 {
		total += 2 * (len(widths) - 1)
	}
	fmt.Println(ruleStyle.Render(strings.Repeat("─", total)))
}

// PrintTableRow pads each cell to its display width. 한자 종목명은 2칸으로 계산.
func PrintTableRow(values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = padCell(val, widths[i])
	}
	fmt.Println(strings.TrimRight(strings.Join(cells, "  "), " "))
}

func padCell(val string, width int) string {
	if pad := width - lipgloss.Width(val); pad > 0 {
		return val + strings.Repeat(" ", pad)
	}
	return val
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints one aligned key : value line
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %s : %s\n", keyStyle.Render(padCell(key, keyWidth)), value)
}
