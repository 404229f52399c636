package commands

import (
	"context"
	"log/slog"

	"souqscrape/lib/serviceutil"
	"souqscrape/lib/telemetry"
	"souqscrape/lib/timezone"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)
}

// cronLogger routes the scheduler's messages through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Info(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append(keysAndValues, "err", err)...)
}

// overlapGuard skips a firing while the previous run is still going. A
// slow scrape outliving the schedule interval must not race a second
// run over the same staging files.
func overlapGuard() cron.JobWrapper {
	return cron.SkipIfStillRunning(cronLogger{})
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Runs all sections on a daily cron schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		ctx := serviceutil.SignalContext()
		telemetry.InstrumentPerfStats(ctx)

		jobs := []struct {
			name string
			run  func(context.Context, Config) error
		}{
			{"contracting", runContracting},
			{"services", runServices},
			{"medical", runMedical},
		}

		// the schedule fires in the marketplace's timezone so "yesterday"
		// means the same thing the listings do
		c := cron.New(
			cron.WithLocation(timezone.Location),
			cron.WithChain(overlapGuard()),
		)
		_, err := c.AddFunc(cfg.Daemon.Schedule, func() {
			for _, job := range jobs {
				if ctx.Err() != nil {
					return
				}
				slog.InfoContext(ctx, "starting scheduled run", "section", job.name)
				err := job.run(ctx, cfg)
				if err != nil {
					slog.ErrorContext(ctx, "scheduled run failed", "section", job.name, "err", err)
					continue
				}
				slog.InfoContext(ctx, "scheduled run finished", "section", job.name)
			}
		})
		if err != nil {
			serviceutil.Fatal("failed to parse cron schedule", err)
		}

		slog.Info("daemon started", "schedule", cfg.Daemon.Schedule)
		c.Start()
		<-ctx.Done()

		stopped := c.Stop()
		<-stopped.Done()
	},
}
