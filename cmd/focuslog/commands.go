package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"focuslog/internal/config"
	"focuslog/internal/daemon"
	"focuslog/internal/exporter"
	"focuslog/internal/models"
	"focuslog/internal/reporter"
	"focuslog/pkg/detector"
	"focuslog/pkg/integrations/process"
	"focuslog/pkg/utils"
	"focuslog/pkg/window"
	"focuslog/version"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is running and what it is tracking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if platform, err := process.Platform(); err == nil {
				fmt.Fprintf(out, "Platform: %s (%s)\n", platform, detector.DetectDisplayServer())
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check tracker status: %w", err)
			}
			if !running {
				fmt.Fprintln(out, "Status: Not running")
				fmt.Fprintf(out, "PID File: %s\n", dm.PIDFile())
				return nil
			}
			fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
			fmt.Fprintf(out, "PID File: %s\n", dm.PIDFile())

			client, err := newSessionClient(cfg)
			if err != nil {
				return err
			}
			status, err := client.Status()
			if err != nil {
				fmt.Fprintf(out, "Web API: unavailable (%v)\n", err)
				return nil
			}

			fmt.Fprintf(out, "Poll Interval: %s\n", status.PollInterval)
			fmt.Fprintf(out, "Identify By: %s\n", status.Identify)
			fmt.Fprintf(out, "Segments: %d\n", status.Segments)
			if status.Rollbacks > 0 {
				fmt.Fprintf(out, "Clock Rollbacks: %d\n", status.Rollbacks)
			}
			fmt.Fprintf(out, "\nCurrent Window: %s (for %s)\n",
				status.Current, utils.FormatDuration(time.Since(status.Since).Seconds()))
			return nil
		},
	}
}

func newStopCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running tracking session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check tracker status: %w", err)
			}
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Tracker is not running")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopping tracker (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return fmt.Errorf("failed to stop tracker: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tracker stopped")
			return nil
		},
	}
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON  bool
		archive string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the time usage summary of the running session",
		Long: `Print the time usage summary of the running session.

With --archive, summarize a session saved earlier by "export archive" instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			segments, err := reportSegments(cfg, archive)
			if err != nil {
				return err
			}

			rep := reporter.New()
			report := rep.GenerateReport(segments)
			if asJSON {
				out, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), rep.FormatReportText(report))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().StringVar(&archive, "archive", "", "read an exported SQLite archive instead of the running session")
	return cmd
}

// reportSegments reads the segments to report on from the archive at path,
// or from the running session when path is empty.
func reportSegments(cfg *config.Config, path string) ([]models.Segment, error) {
	if path != "" {
		segments, _, err := exporter.ReadArchive(path)
		return segments, err
	}

	client, err := newSessionClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.Segments()
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Save the running session to a file",
	}

	kinds := []struct {
		use   string
		short string
		path  func(*config.Config) string
	}{
		{"log", "Save the detailed log and summary as CSV", (*config.Config).LogPath},
		{"chart", "Save the summary as a PNG bar chart", (*config.Config).ChartPath},
		{"archive", "Save the session to a SQLite database", (*config.Config).ArchivePath},
	}

	for _, k := range kinds {
		export.AddCommand(&cobra.Command{
			Use:   k.use + " [path]",
			Short: k.short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				path := k.path(cfg)
				if len(args) == 1 {
					path = args[0]
				}

				client, err := newSessionClient(cfg)
				if err != nil {
					return err
				}
				segments, err := client.Segments()
				if err != nil {
					return err
				}

				if err := runExport(cfg, k.use, path, segments); err != nil {
					if errors.Is(err, exporter.ErrEmptyReport) {
						return fmt.Errorf("nothing written to %s: %w", path, err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", k.use, path)
				return nil
			},
		})
	}
	return export
}

func runExport(cfg *config.Config, kind, path string, segments []models.Segment) error {
	summary := reporter.Summarize(segments)

	switch kind {
	case "log":
		return exporter.WriteLogFile(path, segments, summary)
	case "chart":
		return exporter.WriteChartFile(path, summary, exporter.ChartOptions{
			Width:    cfg.Export.ChartWidth,
			Height:   cfg.Export.ChartHeight,
			MaxLabel: cfg.Export.MaxLabel,
		})
	case "archive":
		return exporter.WriteArchive(path, segments, summary)
	}
	return fmt.Errorf("unknown export kind %q", kind)
}

func newProbeCmd(flags *globalFlags) *cobra.Command {
	var watch, verbose bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the name of the focused window",
		Long: `Print the name of the focused window as the tracker would record it.

With --watch, keep printing whenever it changes until interrupted. With
--verbose, also list the detection backends this session can use. Useful for
checking window detection on a new desktop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "Display Server: %s\n", detector.DetectDisplayServer())
				fmt.Fprint(out, detector.Status())
			}

			probe, closeProbe := detector.NewProbe(cfg.Tracker.Identify)
			defer closeProbe()

			last := probe.ActiveWindowTitle()
			fmt.Fprintln(out, last)
			if !watch || last == window.UnsupportedOS {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(cfg.Tracker.PollInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case now := <-ticker.C:
					if title := probe.ActiveWindowTitle(); title != last {
						fmt.Fprintf(out, "[%s] %s\n", now.Format("15:04:05"), title)
						last = title
					}
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing focus changes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "describe the available detection backends")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "built  : %s\n", version.Date)
		},
	}
}
