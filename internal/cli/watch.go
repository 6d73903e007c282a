package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type watchSample struct {
	Time   time.Time         `json:"time"`
	Status *deviceStatus     `json:"status,omitempty"`
	Pins   []devapi.PinValue `json:"pins,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// pollJob samples the device on every trigger fire and stops the watch
// after limit samples when limit is positive.
type pollJob struct {
	a      *app
	client devapi.DeviceClient
	pins   []int
	limit  int
	done   context.CancelFunc

	mu    sync.Mutex
	count int
}

func (j *pollJob) Description() string {
	return fmt.Sprintf("poll device pins=%v", j.pins)
}

func (j *pollJob) Execute(ctx context.Context) error {
	sample := watchSample{Time: time.Now()}
	status, err := j.client.GetStatus(ctx)
	if err == nil {
		s := newDeviceStatus(status)
		sample.Status = &s
		if len(j.pins) > 0 {
			sample.Pins, err = j.client.ReadPins(ctx, j.pins)
		}
	}
	if err != nil {
		j.a.logger.Warn("watch: poll failed", zap.Error(err))
		sample.Error = err.Error()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.limit > 0 && j.count >= j.limit {
		return nil
	}
	j.count++
	if perr := j.a.printJSON(sample); perr != nil {
		return perr
	}
	if j.limit > 0 && j.count >= j.limit {
		j.done()
	}
	return err
}

func (a *app) watchCommand() *cobra.Command {
	var every time.Duration
	var cron string
	var pinArgs []string
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll status and analog pins on a schedule",
		Long: `Poll the device status, and optionally analog pins, on a fixed interval
(--every) or a quartz cron expression with seconds (--cron "0/30 * * * * *").
One JSON line is printed per sample.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger, err := watchTrigger(every, cron)
			if err != nil {
				return err
			}
			pins, err := parsePins(pinArgs)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), client, trigger, pins, count)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "poll interval, e.g. 10s")
	cmd.Flags().StringVar(&cron, "cron", "", "quartz cron expression")
	cmd.Flags().StringSliceVar(&pinArgs, "pins", nil, "analog pins to read")
	cmd.Flags().IntVar(&count, "count", 0, "stop after N samples (0 runs until interrupted)")
	cmd.MarkFlagsMutuallyExclusive("every", "cron")
	return cmd
}

func watchTrigger(every time.Duration, cron string) (quartz.Trigger, error) {
	if cron != "" {
		trigger, err := quartz.NewCronTrigger(cron)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cron, err)
		}
		return trigger, nil
	}
	if every <= 0 {
		return nil, errors.New("watch needs --every or --cron")
	}
	return quartz.NewSimpleTrigger(every), nil
}

func (a *app) watch(ctx context.Context, client devapi.DeviceClient, trigger quartz.Trigger, pins []int, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := quartz.NewStdScheduler()
	sched.Start(ctx)

	job := &pollJob{
		a:      a,
		client: client,
		pins:   pins,
		limit:  count,
		done:   cancel,
	}
	if err := sched.ScheduleJob(quartz.NewJobDetail(job, quartz.NewJobKey("watch")), trigger); err != nil {
		sched.Stop()
		return err
	}

	<-ctx.Done()
	sched.Stop()
	sched.Wait(context.Background())
	return nil
}
