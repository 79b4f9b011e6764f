package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failN    int32 // 처음 failN번 실패
	calls    int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	if atomic.AddInt32(&j.calls, 1) <= j.failN {
		return errors.New("provider timeout")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop(), time.UTC).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "30 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}), "duplicate")
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "0 0 18 * * *"}), "seconds field is not accepted")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
}

func TestNextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "watchlist", schedule: "30 18 * * 1-5"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("watchlist")
	require.NoError(t, err)
	assert.Equal(t, 18, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestNextRun_BeforeStart(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	s := New(logger.Nop(), taipei)
	require.NoError(t, s.AddJob(&fakeJob{name: "cleanup", schedule: "0 3 * * *"}))

	next, err := s.NextRun("cleanup")
	require.NoError(t, err)
	assert.False(t, next.IsZero())
	assert.Equal(t, 3, next.In(taipei).Hour())
	assert.True(t, next.After(time.Now()))
}

func TestRunJob_Retry(t *testing.T) {
	tests := []struct {
		name      string
		failN     int32
		wantOK    bool
		wantCalls int32
	}{
		{"first try", 0, true, 1},
		{"recovers on retry", 2, true, 3},
		{"exhausts retries", 5, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			job := &fakeJob{name: "job", schedule: "@daily", failN: tt.failN}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJob(context.Background(), "job")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, result.Success)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&job.calls))
			if !tt.wantOK {
				assert.Equal(t, "provider timeout", result.Error)
			}

			stats := s.GetJobStats()["job"]
			assert.Equal(t, 1, stats.TotalRuns)
			assert.Equal(t, "@daily", stats.Schedule)
		})
	}
}

func TestRunJob_Cancelled(t *testing.T) {
	s := New(logger.Nop(), time.UTC).WithRetry(3, time.Hour)
	job := &fakeJob{name: "job", schedule: "@daily", failN: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := s.RunJob(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))
	assert.Contains(t, result.Error, "deadline")

	_, err = s.RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	assert.Empty(t, h.Latest(5))
	assert.Nil(t, h.lastWhere(true))

	base := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	for i := 0; i < maxHistory+10; i++ {
		h.Add(JobResult{JobName: "job", StartTime: base.Add(time.Duration(i) * time.Hour), Success: i%4 != 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, 25, h.Failures())
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-9)

	latest := h.Latest(3)
	require.Len(t, latest, 3)
	assert.Equal(t, base.Add(109*time.Hour), latest[0].StartTime, "newest first")
	assert.Equal(t, base.Add(107*time.Hour), latest[2].StartTime)

	// 108 = 4*27 → 마지막 실패
	assert.Equal(t, base.Add(108*time.Hour), h.lastWhere(false).StartTime)
	assert.Equal(t, base.Add(109*time.Hour), h.lastWhere(true).StartTime)
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler().WithRetry(0, 0)
	job := &fakeJob{name: "job", schedule: "@daily", failN: 1}
	require.NoError(t, s.AddJob(job))

	_, err := s.RunJob(context.Background(), "job") // fails
	require.NoError(t, err)
	_, err = s.RunJob(context.Background(), "job") // succeeds
	require.NoError(t, err)

	st := s.GetJobStats()["job"]
	assert.Equal(t, 2, st.TotalRuns)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Equal(t, 1, st.FailureCount)
	require.NotNil(t, st.LastSuccess)
	require.NotNil(t, st.LastFailure)
	assert.False(t, st.LastSuccess.Before(*st.LastFailure))
	assert.Empty(t, st.LastError)
	assert.Nil(t, st.NextRun, "not started")
}
