package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focuslog/pkg/window"
)

// Config holds all application configuration
type Config struct {
	// Tracker configuration
	Tracker TrackerConfig

	// Export configuration
	Export ExportConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration // How often to check focused window
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	Identify        window.IdentifyMode
}

// ExportConfig holds defaults for user-triggered exports
type ExportConfig struct {
	Dir         string // Directory for exports started from the TUI
	LogName     string
	ChartName   string
	ArchiveName string
	ChartWidth  float64 // Inches
	ChartHeight float64 // Inches
	MaxLabel    int     // Longest x-axis label in runes before truncation
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Log destination while the TUI owns the terminal
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    1 * time.Second,
			MinPollInterval: 250 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			Identify:        window.IdentifyTitle,
		},
		Export: ExportConfig{
			Dir:         ".",
			LogName:     "activity_log.csv",
			ChartName:   "activity_report.png",
			ArchiveName: "activity.db",
			ChartWidth:  10,
			ChartHeight: 5,
			MaxLabel:    32,
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), fmt.Sprintf("focuslog-%d.pid", os.Getuid())),
			LogFile: filepath.Join(os.TempDir(), fmt.Sprintf("focuslog-%d.log", os.Getuid())),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid()%50000, // Default port based on user ID
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if _, err := window.ParseIdentifyMode(string(c.Tracker.Identify)); err != nil {
		return err
	}

	if c.Export.ChartWidth <= 0 || c.Export.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", c.Export.ChartWidth, c.Export.ChartHeight)
	}

	if c.Export.MaxLabel < 4 {
		return fmt.Errorf("max label length must be at least 4, got %d", c.Export.MaxLabel)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// LogPath is where the CSV log export goes by default
func (c *Config) LogPath() string {
	return filepath.Join(c.Export.Dir, c.Export.LogName)
}

// ChartPath is where the chart export goes by default
func (c *Config) ChartPath() string {
	return filepath.Join(c.Export.Dir, c.Export.ChartName)
}

// ArchivePath is where the SQLite archive export goes by default
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Export.Dir, c.Export.ArchiveName)
}

// Address returns host:port for the web server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Tracker:
    Poll Interval: %v
    Min Interval: %v
    Max Interval: %v
    Identify By: %s
  Export:
    Directory: %s
    Log: %s
    Chart: %s (%vx%v in)
    Archive: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Tracker.PollInterval,
		c.Tracker.MinPollInterval,
		c.Tracker.MaxPollInterval,
		c.Tracker.Identify,
		c.Export.Dir,
		c.Export.LogName,
		c.Export.ChartName,
		c.Export.ChartWidth,
		c.Export.ChartHeight,
		c.Export.ArchiveName,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Host,
		c.Web.Port,
	)
}
