package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/pkg/logger"
)

// DataCollectionJob prefetches the watchlist ahead of the analysis run
// and checks data quality. With Redis enabled the provider responses
// land in the dataset cache, so the analysis run reads them from there.
// ⭐ SSOT: 데이터 수집 스케줄은 이 Job에서만
type DataCollectionJob struct {
	collector   *collector.Collector
	qualityGate contracts.QualityGate
	codes       []string
	schedule    string
	workers     int
	logger      *logger.Logger
}

// NewDataCollectionJob creates a new data collection job
func NewDataCollectionJob(
	col *collector.Collector,
	qg contracts.QualityGate,
	codes []string,
	schedule string,
	workers int,
	log *logger.Logger,
) *DataCollectionJob {
	return &DataCollectionJob{
		collector:   col,
		qualityGate: qg,
		codes:       codes,
		schedule:    schedule,
		workers:     workers,
		logger:      log.WithField("job", "data_collection"),
	}
}

// Name returns the job name
func (j *DataCollectionJob) Name() string {
	return "data_collection"
}

// Schedule returns the cron schedule
func (j *DataCollectionJob) Schedule() string {
	return j.schedule
}

// Run executes the data collection
func (j *DataCollectionJob) Run(ctx context.Context) error {
	j.logger.WithField("codes", j.codes).Info("Starting scheduled data collection")

	results := j.collector.CollectAll(ctx, j.codes, collector.Config{Workers: j.workers})

	batch := make([]*contracts.StockData, 0, len(results))
	var transport int
	for _, r := range results {
		switch {
		case r.Error == nil:
			batch = append(batch, r.Data)
		case !collector.IsDataError(r.Error):
			transport++
		}
	}

	// 전송 오류만 재시도 대상 (데이터 부족은 재시도해도 동일)
	if transport > 0 && len(batch) == 0 {
		return fmt.Errorf("data collection: %d/%d stocks failed", transport, len(results))
	}
	if len(batch) == 0 {
		j.logger.Warn("No stock returned usable data")
		return nil
	}

	snapshot, err := j.qualityGate.Check(ctx, batch)
	if err != nil {
		return fmt.Errorf("quality validation failed: %w", err)
	}

	fields := map[string]interface{}{
		"quality_score": snapshot.QualityScore,
		"total_stocks":  snapshot.TotalStocks,
		"valid_stocks":  snapshot.ValidStocks,
	}
	if !snapshot.IsValid() {
		j.logger.WithFields(fields).Warn("Data quality below threshold")
	} else {
		j.logger.WithFields(fields).Info("Scheduled data collection completed")
	}

	return nil
}
