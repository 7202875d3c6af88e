package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gamesched/internal/ctl"
	"gamesched/internal/host"
	"gamesched/internal/sched"
)

var (
	configPath string // YAML config location
	demoTasks  int    // synthetic load generator task count
	demoLoop   bool   // demo tasks loop forever instead of sleeping
)

// runCmd starts the simulated host with the policy installed and serves the
// control socket until interrupted.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := sched.Load(configPath)
		logrus.WithFields(logrus.Fields{
			"max_cpus":  cfg.MaxCPUs,
			"tick_ms":   cfg.TickMS,
			"isolation": cfg.IsolationEnabled,
		}).Info("loaded config")

		h := host.New(cfg)
		policy, err := sched.New(cfg, h)
		if err != nil {
			logrus.Fatalf("policy init: %v", err)
		}
		h.Install(policy)

		srv, err := ctl.NewServer(policy, sockPath)
		if err != nil {
			logrus.Fatal(err)
		}
		go srv.Serve()
		defer srv.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go demoLoad(ctx, h, demoTasks)
		go statsLoop(ctx, policy)

		logrus.Info("gamesched running; press Ctrl+C to exit")
		h.Run(ctx)
	},
}

// statsLoop prints the dispatch counters once per second.
func statsLoop(ctx context.Context, policy *sched.Policy) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			sn := policy.Stats().Snapshot()
			fmt.Printf("game=%d normal=%d isolated_redirects=%d\n",
				sn.PriorityDispatches, sn.NormalDispatches, sn.IsolationRedirects)
		case <-ctx.Done():
			return
		}
	}
}

// demoTask is one synthetic task; busy guards against re-waking a task that
// is still queued or running, which would double-schedule it.
type demoTask struct {
	task *sched.Task
	busy atomic.Bool
}

// demoLoad generates synthetic load so the queues and counters move without
// external work: either count looping tasks that yield only on slice expiry,
// or count sleep tasks re-woken as they finish.
func demoLoad(ctx context.Context, h *host.Host, count int) {
	if count <= 0 {
		return
	}
	if demoLoop {
		for i := 0; i < count; i++ {
			h.Wake(&sched.Task{ID: sched.TaskID(i + 1), Run: host.LoopWork()}, 0)
		}
		return
	}
	tasks := make([]*demoTask, count)
	for i := range tasks {
		tasks[i] = &demoTask{task: &sched.Task{ID: sched.TaskID(i + 1)}}
	}

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			for _, d := range tasks {
				if !d.busy.CompareAndSwap(false, true) {
					continue
				}
				d := d
				work := host.SleepWork(20 * time.Millisecond)
				d.task.Run = func(ctx context.Context) error {
					err := work(ctx)
					if err == nil {
						d.busy.Store(false)
					}
					return err
				}
				h.Wake(d.task, 0)
			}
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yml", "path to the YAML config")
	runCmd.Flags().IntVar(&demoTasks, "demo-tasks", 0, "generate synthetic load with this many tasks")
	runCmd.Flags().BoolVar(&demoLoop, "demo-loop", false, "demo tasks loop forever instead of sleeping")
	rootCmd.AddCommand(runCmd)
}
