package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/camtrap/internal/adapters/dataset"
	service "github.com/okian/camtrap/internal/app"
	"github.com/okian/camtrap/internal/config"
	"github.com/okian/camtrap/pkg/logger"
	"github.com/okian/camtrap/pkg/metrics"
)

// analyzeFlags override the matching configuration keys when set.
type analyzeFlags struct {
	interval int
	grouping string
	moonDays int
	from     string
	to       string
}

// newAnalyzeCommand creates the analyze command for a full dataset report.
func newAnalyzeCommand(c *cli) *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [dataset.yaml]",
		Short: "Analyze a camera trap dataset",
		Long: `Analyze every species and location of a dataset and print the report
as YAML. Flags override the corresponding configuration keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.analyze(cmd, args[0], f)
		},
	}

	cmd.Flags().IntVarP(&f.interval, "interval", "i", 0, "Independent event interval in minutes")
	cmd.Flags().StringVarP(&f.grouping, "grouping", "g", "", "Period grouping: location or pooled")
	cmd.Flags().IntVar(&f.moonDays, "moon-window", 0, "Days around a full or new moon")
	cmd.Flags().StringVar(&f.from, "from", "", "First day to analyze, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day to analyze, YYYY-MM-DD")
	return cmd
}

func (c *cli) analyze(cmd *cobra.Command, path string, f analyzeFlags) error {
	ctx := cmd.Context()

	cfg := *c.cfg
	if cmd.Flags().Changed("interval") {
		cfg.EventIntervalMinutes = f.interval
	}
	if cmd.Flags().Changed("grouping") {
		cfg.Grouping = f.grouping
	}
	if cmd.Flags().Changed("moon-window") {
		cfg.MoonWindowDays = f.moonDays
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	window, err := f.window()
	if err != nil {
		return err
	}

	ds, err := dataset.Load(ctx, path)
	if err != nil {
		return err
	}

	start := time.Now()
	opts := append(serviceOptions(&cfg), window)
	report, err := service.New(opts...).Analyze(ctx, ds)
	if err != nil {
		c.log.Error(ctx, "analysis failed", logger.String("path", path), logger.Error(err))
		return err
	}
	c.log.Info(ctx, "analysis finished",
		logger.String("run_id", report.RunID),
		logger.Int("species", len(report.Species)),
		logger.Int("locations", len(report.Locations)),
		logger.Duration("took", time.Since(start)),
	)

	if err := writeYAML(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
	}
	return nil
}

// window converts --from and --to into a half-open service window; --to
// names the last included day.
func (f analyzeFlags) window() (service.Option, error) {
	var from, to time.Time
	if f.from != "" {
		t, err := time.Parse(time.DateOnly, f.from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from %q: %w", f.from, err)
		}
		from = t
	}
	if f.to != "" {
		t, err := time.Parse(time.DateOnly, f.to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to %q: %w", f.to, err)
		}
		to = t.AddDate(0, 0, 1)
	}
	return service.WithWindow(from, to), nil
}

// serviceOptions maps configuration keys to service options.
func serviceOptions(cfg *config.Config) []service.Option {
	return []service.Option{
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithEventInterval(cfg.EventIntervalMinutes),
		service.WithGrouping(cfg.SegmentGrouping()),
		service.WithMoonWindowDays(cfg.MoonWindowDays),
		service.WithCacheTTL(cfg.CacheTTL()),
		service.WithMinPictures(cfg.MinPicturesForSimilarity),
	}
}
