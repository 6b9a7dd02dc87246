package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"focuslog/internal/config"
	"focuslog/internal/daemon"
	"focuslog/internal/tracker"
	"focuslog/internal/tui"
	"focuslog/internal/web"
	"focuslog/pkg/detector"
)

func newTrackCmd(flags *globalFlags) *cobra.Command {
	var withTUI, noWeb bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Start a tracking session",
		Long: `Start a tracking session in the foreground.

The session polls the focused window until interrupted. Unless --no-web is
given, a local web API serves the live log, summary and exports; the status,
report and export commands read from it.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runTrack(cfg, withTUI, noWeb)
		},
	}
	cmd.Flags().BoolVar(&withTUI, "tui", false, "show the live terminal UI")
	cmd.Flags().BoolVar(&noWeb, "no-web", false, "do not start the web API")
	return cmd
}

func runTrack(cfg *config.Config, withTUI, noWeb bool) error {
	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Acquire(); err != nil {
		return err
	}
	defer dm.RemovePID()

	// The TUI owns the terminal, so logs go to a file instead
	if withTUI {
		logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	probe, closeProbe := detector.NewProbe(cfg.Tracker.Identify)
	defer closeProbe()

	svc := tracker.NewService(cfg, probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			log.Println("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	var webServer *web.Server
	if !noWeb {
		webServer = web.NewServer(cfg, svc)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
	}

	trackerDone := make(chan error, 1)
	go func() {
		trackerDone <- svc.Start(ctx)
	}()

	log.Println("Starting focuslog tracking session...")
	log.Printf("Configuration:\n%s", cfg.String())
	if webServer != nil {
		log.Printf("Web API available at: http://%s", webServer.GetAddress())
	}

	if withTUI {
		if err := tui.Run(ctx, cfg, svc); err != nil {
			log.Printf("TUI error: %v", err)
		}
		cancel()
	} else {
		<-ctx.Done()
	}

	svc.Stop()
	if err := <-trackerDone; err != nil && err != context.Canceled {
		log.Printf("Tracker error: %v", err)
	}

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
	}

	log.Println("Tracking session ended")
	return nil
}
