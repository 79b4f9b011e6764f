package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `관심종목 정기 분석 작업을 조회하거나 즉시 실행합니다.
데몬으로 돌리려면 serve 명령을 사용하세요.

Subcommands:
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/fundlens scheduler list
  go run ./cmd/fundlens scheduler run watchlist_analysis`,
}

var (
	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	// serve와 같은 작업 구성
	for _, c := range []*cobra.Command{schedulerListCmd, schedulerRunCmd} {
		c.Flags().StringVar(&servePrefetchSchedule, "prefetch-schedule", "0 18 * * 1-5", "데이터 선수집 cron (5 fields)")
		c.Flags().DurationVar(&serveRetention, "retention", serveRetentionDefault, "리포트 파일 보관 기간")
	}
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	PrintHeader("Registered jobs (" + a.strategy.Meta.Timezone + ")")
	if !a.strategy.Watchlist.Enabled {
		PrintInfo("watchlist.enabled is false, serve will not schedule these")
	}

	widths := []int{20, 16, 22}
	PrintTableHeader([]string{"Job", "Schedule", "Next Run"}, widths)
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next, err := sched.NextRun(name)
		if err != nil {
			return err
		}
		PrintTableRow([]string{name, stats[name].Schedule, next.Format("2006-01-02 15:04 MST")}, widths)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintInfo("Running job: " + jobName)
	result, err := sched.WithRetry(0, 0).RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", jobName, result.Duration, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration))
	return nil
}
