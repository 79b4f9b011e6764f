package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/contracts"
)

const testStrategy = `universe:
  max_batch: 5
  stocks:
    "2330": { name: TSMC, industry: Semiconductors }
    "2881":
      name: Fubon Financial
      industry: Financials
      recommend: false
      note: Bank and insurance earnings do not track revenue
`

// runCLI executes cmd offline against a temp strategy file
func runCLI(t *testing.T, cmd string, args ...string) error {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testStrategy), 0o644))

	for k, v := range map[string]string{
		"ENV":             "development",
		"DATA_SOURCE":     "finmind",
		"BOND_SOURCE":     "finmind",
		"REDIS_ENABLED":   "false",
		"TRACING_ENABLED": "false",
		"LOG_LEVEL":       "error",
	} {
		t.Setenv(k, v)
	}
	t.Cleanup(func() {
		strategyPath, offline, verbose = "", false, false
		analyzeFormat, analyzeOut, analyzeQuiet = "table", "", false
	})

	rootCmd.SetArgs(append([]string{cmd, "--offline", "--strategy", path}, args...))
	return rootCmd.Execute()
}

func TestAnalyze_ExitCode(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		wantErr error
		wantRow string
	}{
		{"analyzed", []string{"2330"}, nil, "2330"},
		{"every stock excluded", []string{"2881"}, contracts.ErrNothingAnalyzed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "ranking.csv")
			args := append([]string{"--quiet", "--format", "csv", "--out", out}, tt.codes...)

			err := runCLI(t, "analyze", args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			// 실패해도 (빈) 결과 파일은 남는다
			data, readErr := os.ReadFile(out)
			require.NoError(t, readErr)
			if tt.wantRow != "" {
				assert.Contains(t, string(data), tt.wantRow)
			}
		})
	}
}
