package window

// Sentinel titles reported by a Probe when no real window can be named
const (
	UnsupportedOS = "Unsupported OS"
	Unknown       = "Unknown"
)

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string
	WindowTitle   string
	ProcessName   string
	PID           int
	DisplayServer string // "x11" or "wayland"
}

// Detector is the interface that all window detection implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}

// Probe names the foreground window. It never fails: platforms without a
// detector report UnsupportedOS and lookup failures report Unknown.
type Probe interface {
	ActiveWindowTitle() string
}

// ProbeFunc adapts a plain function to the Probe interface
type ProbeFunc func() string

func (f ProbeFunc) ActiveWindowTitle() string {
	return f()
}
