package hybrid

import (
	"fmt"
	"log"
	"os"
	"strings"

	"focuslog/pkg/integrations/process"
	"focuslog/pkg/integrations/wayland"
	"focuslog/pkg/integrations/x11"
	"focuslog/pkg/window"
)

// Detector tries each backend in order and keeps the first answer
type Detector struct {
	detectors []window.Detector

	lastSuccessfulMethod string
}

// NewDetector builds a detector from the backends the session environment
// suggests. It fails when none of them can run.
func NewDetector() (*Detector, error) {
	var candidates []window.Detector

	if os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("XDG_SESSION_TYPE") == "wayland" {
		candidates = append(candidates, wayland.NewDetector())
	}

	// XWayland also answers here for X clients under a Wayland session
	if os.Getenv("DISPLAY") != "" {
		candidates = append(candidates, x11.NewDetector())
	}

	d := New(candidates...)
	if len(d.detectors) == 0 {
		return nil, fmt.Errorf("no window detector available (set DISPLAY or run under a supported Wayland compositor)")
	}

	for _, det := range d.detectors {
		log.Printf("Window detector available: %s", det.GetDisplayServer())
	}
	return d, nil
}

// New wraps the given detectors, dropping and closing the unavailable ones
func New(detectors ...window.Detector) *Detector {
	d := &Detector{}
	for _, det := range detectors {
		if det == nil {
			continue
		}
		if !det.IsAvailable() {
			det.Close()
			continue
		}
		d.detectors = append(d.detectors, det)
	}
	return d
}

// GetFocusedWindow returns the first successful answer among the backends
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var errs []string

	for _, det := range d.detectors {
		info, err := det.GetFocusedWindow()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", det.GetDisplayServer(), err))
			continue
		}
		if info == nil {
			errs = append(errs, fmt.Sprintf("%s: no window information", det.GetDisplayServer()))
			continue
		}

		if info.ProcessName == "" && info.PID > 0 {
			info.ProcessName = process.NameForPID(info.PID)
		}
		if info.AppName == "" {
			info.AppName = info.ProcessName
		}

		d.lastSuccessfulMethod = det.GetDisplayServer()
		return info, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no window detector available")
	}
	return nil, fmt.Errorf("all detection methods failed: %s", strings.Join(errs, "; "))
}

func (d *Detector) IsAvailable() bool {
	return len(d.detectors) > 0
}

// GetDisplayServer reports the backend that last answered, or the first one
func (d *Detector) GetDisplayServer() string {
	if d.lastSuccessfulMethod != "" {
		return d.lastSuccessfulMethod
	}
	if len(d.detectors) > 0 {
		return d.detectors[0].GetDisplayServer()
	}
	return "none"
}

type DetectorInfo struct {
	Name      string
	Available bool
	Priority  int
}

// GetAllDetectors lists the backends in the order they are tried
func (d *Detector) GetAllDetectors() []DetectorInfo {
	detectors := make([]DetectorInfo, 0, len(d.detectors))
	for i, det := range d.detectors {
		detectors = append(detectors, DetectorInfo{
			Name:      det.GetDisplayServer(),
			Available: det.IsAvailable(),
			Priority:  len(d.detectors) - i,
		})
	}
	return detectors
}

func (d *Detector) GetStatus() string {
	status := "Hybrid Detector Status:\n"

	if len(d.detectors) == 0 {
		status += "  No detectors available\n"
	}
	for _, det := range d.GetAllDetectors() {
		status += fmt.Sprintf("  %s detector (available: %v, priority: %d)\n", det.Name, det.Available, det.Priority)
	}

	last := d.lastSuccessfulMethod
	if last == "" {
		last = "none yet"
	}
	status += fmt.Sprintf("  Last successful method: %s\n", last)

	return status
}

func (d *Detector) Close() error {
	for _, det := range d.detectors {
		if err := det.Close(); err != nil {
			log.Printf("Error closing %s detector: %v", det.GetDisplayServer(), err)
		}
	}
	d.detectors = nil
	return nil
}
