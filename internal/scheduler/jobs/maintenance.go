package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/fundlens/pkg/logger"
)

// ReportCleanupJob removes report files older than the retention window
type ReportCleanupJob struct {
	dir       string
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewReportCleanupJob creates a new report cleanup job
func NewReportCleanupJob(dir string, retention time.Duration, log *logger.Logger) *ReportCleanupJob {
	return &ReportCleanupJob{
		dir:       dir,
		retention: retention,
		logger:    log.WithField("job", "report_cleanup"),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

// Schedule returns the cron schedule (daily 03:00)
func (j *ReportCleanupJob) Schedule() string {
	return "0 3 * * *"
}

// Run executes the cleanup
func (j *ReportCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read report dir: %w", err)
	}

	cutoff := j.now().Add(-j.retention)
	count := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil {
			j.logger.WithError(err).WithField("file", e.Name()).Warn("Failed to remove report")
			continue
		}
		count++
	}

	if count > 0 {
		j.logger.WithField("removed", count).Info("Report cleanup completed")
	}

	return nil
}
