package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"focuslog/pkg/window"
)

// EnvPrefix is prepended to every environment override, e.g.
// FOCUSLOG_TRACKER_POLL_INTERVAL or FOCUSLOG_WEB_PORT.
const EnvPrefix = "FOCUSLOG"

// DefaultConfigPath returns ~/.config/focuslog/config.yaml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "focuslog", "config.yaml")
}

// Load builds a Config from defaults, then the YAML file at path (or the
// default location when path is empty and the file exists), then FOCUSLOG_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tracker.poll_interval", cfg.Tracker.PollInterval.String())
	v.SetDefault("tracker.identify", string(cfg.Tracker.Identify))
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.log_name", cfg.Export.LogName)
	v.SetDefault("export.chart_name", cfg.Export.ChartName)
	v.SetDefault("export.archive_name", cfg.Export.ArchiveName)
	v.SetDefault("export.chart_width", cfg.Export.ChartWidth)
	v.SetDefault("export.chart_height", cfg.Export.ChartHeight)
	v.SetDefault("export.max_label", cfg.Export.MaxLabel)
	v.SetDefault("daemon.pid_file", cfg.Daemon.PIDFile)
	v.SetDefault("daemon.log_file", cfg.Daemon.LogFile)
	v.SetDefault("web.host", cfg.Web.Host)
	v.SetDefault("web.port", cfg.Web.Port)

	if path == "" && fileExists(DefaultConfigPath()) {
		path = DefaultConfigPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	if interval, err := parseInterval(v.GetString("tracker.poll_interval")); err != nil {
		log.Printf("Ignoring invalid poll interval %q: %v", v.GetString("tracker.poll_interval"), err)
	} else if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
		cfg.Tracker.PollInterval = interval
	} else {
		log.Printf("Ignoring poll interval %v outside [%v, %v]", interval, cfg.Tracker.MinPollInterval, cfg.Tracker.MaxPollInterval)
	}

	mode, err := window.ParseIdentifyMode(v.GetString("tracker.identify"))
	if err != nil {
		return nil, err
	}
	cfg.Tracker.Identify = mode

	cfg.Export.Dir = v.GetString("export.dir")
	cfg.Export.LogName = v.GetString("export.log_name")
	cfg.Export.ChartName = v.GetString("export.chart_name")
	cfg.Export.ArchiveName = v.GetString("export.archive_name")
	cfg.Export.ChartWidth = v.GetFloat64("export.chart_width")
	cfg.Export.ChartHeight = v.GetFloat64("export.chart_height")
	cfg.Export.MaxLabel = v.GetInt("export.max_label")

	cfg.Daemon.PIDFile = v.GetString("daemon.pid_file")
	cfg.Daemon.LogFile = v.GetString("daemon.log_file")

	cfg.Web.Host = v.GetString("web.host")
	if port := v.GetInt("web.port"); port > 0 && port <= 65535 {
		cfg.Web.Port = port
	}

	return cfg, nil
}

// parseInterval accepts Go durations ("1500ms", "2s") or plain seconds ("5")
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return d, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
