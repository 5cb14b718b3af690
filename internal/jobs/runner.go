// Package jobs runs background maintenance on cron schedules.
package jobs

import (
	"sync"

	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/robfig/cron"
)

type Job interface {
	Name() string
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs cron jobs in the cron's goroutines. A job whose previous
// run has not finished is skipped rather than run twice.
type TaskExecutor struct {
	cron     *cron.Cron
	cronJobs []CronJob
	running  mapset.Set[string]
	mu       sync.Mutex
}

func NewTaskExecutor(cronJobs ...CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:     cron.New(),
		cronJobs: cronJobs,
		running:  mapset.NewThreadUnsafeSet[string](),
	}
}

// Start schedules every job and starts the cron. It fails on the first
// invalid schedule.
func (t *TaskExecutor) Start() error {
	for _, job := range t.cronJobs {
		job := job
		if err := t.cron.AddFunc(job.Schedule(), func() { t.tryRun(job) }); err != nil {
			logger.Errorf("failed to schedule %s (%q): %v", job.Name(), job.Schedule(), err)
			return err
		}
		logger.Infof("scheduled job %s (%s)", job.Name(), job.Schedule())
	}
	t.cron.Start()
	return nil
}

// tryRun runs job unless it is already running and reports whether it ran.
func (t *TaskExecutor) tryRun(job Job) bool {
	t.mu.Lock()
	if t.running.Contains(job.Name()) {
		t.mu.Unlock()
		logger.Warnf("job %s is still running, skipping", job.Name())
		return false
	}
	t.running.Add(job.Name())
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running.Remove(job.Name())
		t.mu.Unlock()
	}()
	job.Run()
	return true
}

func (t *TaskExecutor) Stop() {
	logger.Infof("stopping all jobs")
	t.cron.Stop()
}
