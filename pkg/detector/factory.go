package detector

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"focuslog/pkg/integrations/hybrid"
	"focuslog/pkg/window"
)

func New() (window.Detector, error) {
	return hybrid.NewDetector()
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

// NewProbe returns the probe for this platform and a function releasing it.
// Outside Linux, or when no detector can start, the probe reports
// window.UnsupportedOS on every call.
func NewProbe(mode window.IdentifyMode) (window.Probe, func() error) {
	noop := func() error { return nil }

	if runtime.GOOS != "linux" {
		log.Printf("Window detection is not supported on %s", runtime.GOOS)
		return window.NewProbe(nil, mode), noop
	}

	det, err := New()
	if err != nil {
		log.Printf("Window detection unavailable: %v", err)
		return window.NewProbe(nil, mode), noop
	}

	log.Printf("Window detector initialized: %s", det.GetDisplayServer())
	return window.NewProbe(det, mode), det.Close
}

// Status describes the detection backends this session can use and which of
// them answered a first query.
func Status() string {
	if runtime.GOOS != "linux" {
		return fmt.Sprintf("Window detection is not supported on %s\n", runtime.GOOS)
	}

	det, err := hybrid.NewDetector()
	if err != nil {
		return fmt.Sprintf("Window detection unavailable: %v\n", err)
	}
	defer det.Close()

	if _, err := det.GetFocusedWindow(); err != nil {
		log.Printf("Focused window query failed: %v", err)
	}
	return det.GetStatus()
}
