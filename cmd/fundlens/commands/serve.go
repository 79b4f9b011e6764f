package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/internal/api"
	"github.com/wonny/fundlens/internal/api/handlers"
	"github.com/wonny/fundlens/internal/scheduler"
	"github.com/wonny/fundlens/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 관심종목 스케줄러 시작",
	Long: `REST API 서버를 시작하고, strategy.yaml의 watchlist가 켜져 있으면
정기 분석 스케줄러도 함께 실행합니다.

Endpoints:
  GET  /health                        - Health check (strategy hash 포함)
  POST /api/analyze                   - 배치 분석 {"codes": ["2330", "2454"]}
  GET  /api/stocks/{code}/report      - 종목 리포트 (?format=json|markdown|html)
  GET  /api/reports/ranking.csv       - 랭킹 CSV (?codes=2330,2454 또는 직전 실행)
  GET  /api/data/quality              - 직전 실행의 품질 스냅샷
  GET  /api/data/universe             - 화이트리스트 조회
  POST /api/data/collect              - 데이터 수집만 실행
  GET  /api/scheduler/jobs            - 작업 통계, 다음 실행 시각
  GET  /api/scheduler/jobs/{name}/history
  POST /api/scheduler/jobs/{name}/run - 즉시 실행 (완료까지 대기)

Jobs:
  data_collection     - 분석 전 데이터 선수집 (--prefetch-schedule)
  watchlist_analysis  - watchlist.schedule, REPORT_DIR에 리포트 저장
  report_cleanup      - 매일 03:00, --retention 지난 리포트 삭제

Example:
  go run ./cmd/fundlens serve
  go run ./cmd/fundlens serve --port 9000 --no-scheduler`,
	RunE: runServe,
}

const serveRetentionDefault = 30 * 24 * time.Hour

var (
	servePort             string
	serveNoScheduler      bool
	servePrefetchSchedule string
	serveRetention        time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: $PORT)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "스케줄러 없이 API만 실행")
	serveCmd.Flags().StringVar(&servePrefetchSchedule, "prefetch-schedule", "0 18 * * 1-5", "데이터 선수집 cron (5 fields)")
	serveCmd.Flags().DurationVar(&serveRetention, "retention", serveRetentionDefault, "리포트 파일 보관 기간")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}
	log := a.log

	var sched *scheduler.Scheduler
	var jobsAPI handlers.JobScheduler
	if !serveNoScheduler && a.strategy.Watchlist.Enabled {
		if sched, err = a.newScheduler(); err != nil {
			return err
		}
		jobsAPI = sched
	}

	last := &handlers.LastRun{}
	router := api.NewRouter(api.Handlers{
		Analysis:     handlers.NewAnalysisHandler(a.orch, a.cache, last, log),
		Data:         handlers.NewDataHandler(a.strategy, a.collector, a.gate, last, log),
		Scheduler:    handlers.NewSchedulerHandler(jobsAPI, log),
		StrategyHash: a.strategyHash,
	}, log)
	server := api.New(a.cfg, log, router)

	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	PrintHeader("fundlens API Server")
	PrintKeyValue("Address", "http://localhost"+server.Addr(), 10)
	PrintKeyValue("Strategy", fmt.Sprintf("%s (%s)", a.strategy.Meta.StrategyID, a.strategyHash[:12]), 10)
	PrintKeyValue("Source", dataSourceName(a.cfg), 10)
	if sched != nil {
		for _, name := range sched.GetAllJobs() {
			next, _ := sched.NextRun(name)
			PrintKeyValue(name, next.Format("2006-01-02 15:04 MST"), 10)
		}
	} else {
		PrintInfo("Scheduler disabled")
	}
	PrintSeparator()
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, 30*time.Second); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// newScheduler registers the watchlist jobs in the strategy timezone
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.strategy.Meta.Timezone)
	if err != nil {
		return nil, fmt.Errorf("strategy timezone: %w", err)
	}

	w := a.strategy.Watchlist
	sched := scheduler.New(a.log, loc)
	for _, job := range []scheduler.Job{
		jobs.NewDataCollectionJob(a.collector, a.gate, w.Codes, servePrefetchSchedule, a.strategy.Analysis.Concurrency, a.log),
		jobs.NewWatchlistJob(a.orch, w, a.cfg.ReportDir, a.log),
		jobs.NewReportCleanupJob(a.cfg.ReportDir, serveRetention, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
