package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpro/internal/service"
	"github.com/robfig/cron"
)

// ScheduleSweepJob re-enqueues scheduled posts that are due but whose task
// was lost, for example when Redis was flushed.
type ScheduleSweepJob struct {
	ps      service.PostService
	timeout time.Duration
}

func NewScheduleSweepJob(ps service.PostService) *ScheduleSweepJob {
	return &ScheduleSweepJob{ps: ps, timeout: time.Minute}
}

// Schedule registers Sweep on c. A spec cron cannot parse is an error so
// the server refuses to start without its sweep.
func (j *ScheduleSweepJob) Schedule(c *cron.Cron, spec string) error {
	if err := c.AddFunc(spec, j.Sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return nil
}

func (j *ScheduleSweepJob) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.ps.EnqueueDue(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if n > 0 {
		slog.Info("re-enqueued due posts", "count", n)
	}
}
