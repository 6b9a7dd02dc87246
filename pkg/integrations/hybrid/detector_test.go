package hybrid

import (
	"errors"
	"strings"
	"testing"

	"focuslog/pkg/window"
)

type fakeDetector struct {
	server    string
	available bool
	info      *window.WindowInfo
	err       error
	closed    bool
}

func (f *fakeDetector) GetFocusedWindow() (*window.WindowInfo, error) {
	return f.info, f.err
}

func (f *fakeDetector) IsAvailable() bool {
	return f.available
}

func (f *fakeDetector) GetDisplayServer() string {
	return f.server
}

func (f *fakeDetector) Close() error {
	f.closed = true
	return nil
}

func TestNewDropsUnavailable(t *testing.T) {
	unavailable := &fakeDetector{server: "wayland"}
	available := &fakeDetector{server: "x11", available: true}

	d := New(unavailable, nil, available)

	if !unavailable.closed {
		t.Error("unavailable detector was not closed")
	}
	if got := len(d.GetAllDetectors()); got != 1 {
		t.Fatalf("len(GetAllDetectors()) = %d, want 1", got)
	}
	if !d.IsAvailable() {
		t.Error("IsAvailable() = false, want true")
	}
}

func TestGetFocusedWindowFallback(t *testing.T) {
	failing := &fakeDetector{server: "wayland", available: true, err: errors.New("Shell.Eval refused")}
	working := &fakeDetector{server: "x11", available: true, info: &window.WindowInfo{
		WindowTitle: "README.md",
		ProcessName: "code",
	}}

	d := New(failing, working)

	info, err := d.GetFocusedWindow()
	if err != nil {
		t.Fatalf("GetFocusedWindow() error: %v", err)
	}
	if info.WindowTitle != "README.md" {
		t.Errorf("WindowTitle = %q, want README.md", info.WindowTitle)
	}
	if info.AppName != "code" {
		t.Errorf("AppName = %q, want process name fallback %q", info.AppName, "code")
	}
	if got := d.GetDisplayServer(); got != "x11" {
		t.Errorf("GetDisplayServer() = %q, want x11", got)
	}
	if !strings.Contains(d.GetStatus(), "Last successful method: x11") {
		t.Errorf("GetStatus() missing last method:\n%s", d.GetStatus())
	}
}

func TestGetFocusedWindowAllFail(t *testing.T) {
	d := New(
		&fakeDetector{server: "wayland", available: true, err: errors.New("boom")},
		&fakeDetector{server: "x11", available: true},
	)

	_, err := d.GetFocusedWindow()
	if err == nil {
		t.Fatal("GetFocusedWindow() returned nil error")
	}
	if !strings.Contains(err.Error(), "wayland: boom") {
		t.Errorf("error %q does not name the failing backend", err)
	}
}

func TestEmptyDetector(t *testing.T) {
	d := New()
	if d.IsAvailable() {
		t.Error("IsAvailable() = true for empty detector")
	}
	if got := d.GetDisplayServer(); got != "none" {
		t.Errorf("GetDisplayServer() = %q, want none", got)
	}
	if _, err := d.GetFocusedWindow(); err == nil {
		t.Error("GetFocusedWindow() returned nil error")
	}
}

func TestClose(t *testing.T) {
	det := &fakeDetector{server: "x11", available: true}
	d := New(det)

	if err := d.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if !det.closed {
		t.Error("backend detector was not closed")
	}
	if d.IsAvailable() {
		t.Error("IsAvailable() = true after Close")
	}
}

func TestDetectorInterface(t *testing.T) {
	var _ window.Detector = (*Detector)(nil)
}
