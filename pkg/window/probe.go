package window

import (
	"fmt"
	"log"
	"strings"
)

// IdentifyMode selects which part of WindowInfo names a window
type IdentifyMode string

const (
	IdentifyTitle IdentifyMode = "title"
	IdentifyApp   IdentifyMode = "app"
)

// ParseIdentifyMode validates a mode read from configuration
func ParseIdentifyMode(s string) (IdentifyMode, error) {
	switch mode := IdentifyMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case IdentifyTitle, IdentifyApp:
		return mode, nil
	case "":
		return IdentifyTitle, nil
	default:
		return "", fmt.Errorf("invalid identify mode: %s (valid: title, app)", s)
	}
}

type detectorProbe struct {
	detector Detector
	mode     IdentifyMode
	lastErr  string
}

// NewProbe wraps a Detector as a Probe. A nil detector always reports
// UnsupportedOS.
func NewProbe(detector Detector, mode IdentifyMode) Probe {
	if detector == nil {
		return ProbeFunc(func() string { return UnsupportedOS })
	}
	if mode == "" {
		mode = IdentifyTitle
	}
	return &detectorProbe{detector: detector, mode: mode}
}

func (p *detectorProbe) ActiveWindowTitle() string {
	info, err := p.detector.GetFocusedWindow()
	if err != nil {
		// Repeated identical failures would flood the log once per tick
		if msg := err.Error(); msg != p.lastErr {
			log.Printf("Window probe failed: %v", err)
			p.lastErr = msg
		}
		return Unknown
	}
	p.lastErr = ""

	if info == nil {
		return Unknown
	}
	return Name(info, p.mode)
}

// Name picks the identifier for info under mode, falling back to whatever
// field is populated.
func Name(info *WindowInfo, mode IdentifyMode) string {
	title := strings.TrimSpace(info.WindowTitle)
	app := strings.TrimSpace(info.AppName)
	if app == "" {
		app = strings.TrimSpace(info.ProcessName)
	}

	first, second := title, app
	if mode == IdentifyApp {
		first, second = app, title
	}

	switch {
	case first != "":
		return first
	case second != "":
		return second
	default:
		return Unknown
	}
}
