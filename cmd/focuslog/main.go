package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"focuslog/internal/config"
	"focuslog/pkg/window"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	interval   time.Duration
	identify   string
	port       int
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "focuslog",
		Short:         "Track time spent in each foreground window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().DurationVar(&flags.interval, "interval", 0, "poll interval, e.g. 1s or 500ms")
	root.PersistentFlags().StringVar(&flags.identify, "identify", "", "name windows by \"title\" or \"app\"")
	root.PersistentFlags().IntVar(&flags.port, "port", 0, "web API port")

	root.AddCommand(newTrackCmd(&flags))
	root.AddCommand(newStatusCmd(&flags))
	root.AddCommand(newStopCmd(&flags))
	root.AddCommand(newReportCmd(&flags))
	root.AddCommand(newExportCmd(&flags))
	root.AddCommand(newProbeCmd(&flags))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig applies command-line overrides on top of file and environment
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.interval != 0 {
		if err := cfg.SetPollInterval(flags.interval); err != nil {
			return nil, err
		}
	}
	if flags.identify != "" {
		mode, err := window.ParseIdentifyMode(flags.identify)
		if err != nil {
			return nil, err
		}
		cfg.Tracker.Identify = mode
	}
	if flags.port != 0 {
		if err := cfg.SetWebPort(flags.port); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
