package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/report"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/logger"
)

// Runner executes one pipeline batch
type Runner interface {
	Run(ctx context.Context, codes []string, tee contracts.LogSink) (*brain.RunResult, error)
}

// WatchlistJob analyzes the configured watchlist and writes report files
// ⭐ SSOT: 관심종목 정기 분석은 이 Job에서만
type WatchlistJob struct {
	runner   Runner
	codes    []string
	formats  []string
	schedule string
	dir      string
	logger   *logger.Logger
	now      func() time.Time
}

// NewWatchlistJob creates a new watchlist job writing into dir
func NewWatchlistJob(runner Runner, w strategyconfig.Watchlist, dir string, log *logger.Logger) *WatchlistJob {
	return &WatchlistJob{
		runner:   runner,
		codes:    w.Codes,
		formats:  w.Formats,
		schedule: w.Schedule,
		dir:      dir,
		logger:   log.WithField("job", "watchlist"),
		now:      time.Now,
	}
}

// Name returns the job name
func (j *WatchlistJob) Name() string {
	return "watchlist_analysis"
}

// Schedule returns the cron schedule from the strategy file
func (j *WatchlistJob) Schedule() string {
	return j.schedule
}

// Run executes the analysis and writes one file per format
func (j *WatchlistJob) Run(ctx context.Context) error {
	j.logger.WithField("codes", j.codes).Info("Starting scheduled watchlist analysis")

	res, err := j.runner.Run(ctx, j.codes, nil)
	if err != nil {
		return fmt.Errorf("watchlist run: %w", err)
	}
	if err := res.NothingAnalyzed(); err != nil {
		return fmt.Errorf("watchlist run %s: %w", res.RunID, err)
	}

	stamp := j.now().Format("20060102_1504")
	doc := report.NewDocument("Watchlist "+j.now().Format("2006-01-02"), res)

	paths, err := WriteReports(j.dir, "watchlist_"+stamp, doc, j.formats)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   res.RunID,
		"analyzed": len(res.Reports),
		"skipped":  len(res.Skipped),
		"files":    paths,
	}).Info("Watchlist analysis completed")

	return nil
}

// WriteReports renders doc once per format into dir/base.<ext>
func WriteReports(dir, base string, doc *report.Document, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := filepath.Join(dir, base+report.Ext(format))
		if err := writeFile(path, doc, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFile renders to a temp file, then renames it over path
func writeFile(path string, doc *report.Document, format string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := report.Render(f, doc, format); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
