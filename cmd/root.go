package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/camtrap/internal/config"
	"github.com/okian/camtrap/pkg/logger"
)

// cli carries the state the root command prepares for its subcommands.
type cli struct {
	configPath string

	cfg *config.Config
	log logger.Logger
}

// newRootCommand creates the camtrap command tree.
func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "camtrap",
		Short: "Camera trap statistics",
		Long: `camtrap computes independent events, activity, abundance, effort and
UTM coordinates from camera trap photo records. Results are printed as YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to a YAML config file (sets "+config.EnvFile+")")

	root.AddCommand(
		newAnalyzeCommand(c),
		newEffortCommand(c),
		newUTMCommand(c),
		newLatLngCommand(c),
		newSynthCommand(c),
	)
	return root
}

// setup loads configuration and initializes logging. It runs before every
// subcommand.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.configPath != "" {
		if err := os.Setenv(config.EnvFile, c.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvFile, err)
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only YAML.
	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithOutput(cmd.ErrOrStderr()),
	); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	c.cfg = cfg
	c.log = logger.Named("cli")
	c.log.Debug(cmd.Context(), "configuration loaded",
		logger.String("command", cmd.Name()),
		logger.Int("event_interval_minutes", cfg.EventIntervalMinutes),
		logger.String("grouping", cfg.Grouping),
		logger.Int("worker_count", cfg.WorkerCount),
	)
	return nil
}

// writeYAML encodes v to w with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
