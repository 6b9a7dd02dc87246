package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/godbus/dbus/v5"

	"focuslog/pkg/integrations/process"
	"focuslog/pkg/window"
)

const gnomeScript = `
(() => {
	let win = global.display.get_focus_window();
	if (!win) {
		return JSON.stringify({});
	}
	return JSON.stringify({
		wm_class: win.get_wm_class() || '',
		title: win.get_title() || '',
		pid: win.get_pid() || 0
	});
})()`

// Detector implements window.Detector for Wayland compositors
type Detector struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	bus        *dbus.Conn
}

// NewDetector creates a new Wayland detector
func NewDetector() *Detector {
	d := &Detector{}
	d.hasSwaymsg = commandExists("swaymsg")
	d.hasHyprctl = commandExists("hyprctl")
	d.compositor = detectCompositor()

	if d.compositor == "gnome" {
		if conn, err := dbus.ConnectSessionBus(); err == nil {
			d.bus = conn
		}
	}
	return d
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor checks the session environment first and only scans the
// process table when the environment is silent.
func detectCompositor() string {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" || strings.Contains(desktop, "hyprland"):
		return "hyprland"
	case os.Getenv("SWAYSOCK") != "" || strings.Contains(desktop, "sway"):
		return "sway"
	case strings.Contains(desktop, "gnome") || strings.Contains(desktop, "ubuntu"):
		return "gnome"
	}

	compositors := map[string]string{
		"sway":        "sway",
		"Hyprland":    "hyprland",
		"gnome-shell": "gnome",
	}
	if name, ok := process.FirstRunning("sway", "Hyprland", "gnome-shell"); ok {
		return compositors[name]
	}

	return "unknown"
}

// IsAvailable checks if Wayland detection is available
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case "sway":
		return d.hasSwaymsg
	case "hyprland":
		return d.hasHyprctl
	case "gnome":
		return d.bus != nil
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// Compositor returns the detected compositor name
func (d *Detector) Compositor() string {
	return d.compositor
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var (
		info *window.WindowInfo
		err  error
	)

	switch d.compositor {
	case "sway":
		info, err = d.getFocusedWindowSway()
	case "hyprland":
		info, err = d.getFocusedWindowHyprland()
	case "gnome":
		info, err = d.getFocusedWindowGnome()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	info.DisplayServer = "wayland"
	if info.PID > 0 {
		info.ProcessName = process.NameForPID(info.PID)
	}
	return info, nil
}

// getFocusedWindowSway gets focused window info from Sway
func (d *Detector) getFocusedWindowSway() (*window.WindowInfo, error) {
	output, err := exec.Command("swaymsg", "-t", "get_tree").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	return parseSwayTree(output)
}

type swayNode struct {
	Name          string     `json:"name"`
	AppID         string     `json:"app_id"`
	PID           int        `json:"pid"`
	Focused       bool       `json:"focused"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
	WindowProps   struct {
		Class string `json:"class"`
	} `json:"window_properties"`
}

// parseSwayTree walks the sway layout tree for the focused node
func parseSwayTree(data []byte) (*window.WindowInfo, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil {
		return nil, fmt.Errorf("no focused sway window")
	}

	appName := node.AppID
	if appName == "" {
		appName = node.WindowProps.Class
	}

	return &window.WindowInfo{
		AppName:     appName,
		WindowTitle: node.Name,
		PID:         node.PID,
	}, nil
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused {
		return node
	}
	for i := range node.Nodes {
		if found := findFocused(&node.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range node.FloatingNodes {
		if found := findFocused(&node.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

// getFocusedWindowHyprland gets focused window info from Hyprland
func (d *Detector) getFocusedWindowHyprland() (*window.WindowInfo, error) {
	output, err := exec.Command("hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}
	return parseHyprlandWindow(output)
}

// parseHyprlandWindow parses the output of `hyprctl activewindow -j`
func parseHyprlandWindow(data []byte) (*window.WindowInfo, error) {
	var active struct {
		Class string `json:"class"`
		Title string `json:"title"`
		PID   int    `json:"pid"`
	}
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	if active.Class == "" && active.Title == "" {
		return nil, fmt.Errorf("no focused hyprland window")
	}

	return &window.WindowInfo{
		AppName:     active.Class,
		WindowTitle: active.Title,
		PID:         active.PID,
	}, nil
}

// getFocusedWindowGnome asks GNOME Shell over the session bus. Shell.Eval is
// refused unless the shell runs in unsafe mode; the error names that case.
func (d *Detector) getFocusedWindowGnome() (*window.WindowInfo, error) {
	if d.bus == nil {
		return nil, fmt.Errorf("session bus unavailable")
	}

	var (
		ok     bool
		result string
	)
	obj := d.bus.Object("org.gnome.Shell", "/org/gnome/Shell")
	if err := obj.Call("org.gnome.Shell.Eval", 0, gnomeScript).Store(&ok, &result); err != nil {
		return nil, fmt.Errorf("failed to call org.gnome.Shell.Eval: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("GNOME Shell.Eval refused (shell not in unsafe mode)")
	}

	return parseGnomeResult(result)
}

// parseGnomeResult decodes the JSON string returned by gnomeScript
func parseGnomeResult(result string) (*window.WindowInfo, error) {
	var focused struct {
		WMClass string `json:"wm_class"`
		Title   string `json:"title"`
		PID     int    `json:"pid"`
	}
	if err := json.Unmarshal([]byte(result), &focused); err != nil {
		return nil, fmt.Errorf("failed to parse GNOME Shell result: %w", err)
	}
	if focused.WMClass == "" && focused.Title == "" {
		return nil, fmt.Errorf("no focused GNOME window")
	}

	return &window.WindowInfo{
		AppName:     focused.WMClass,
		WindowTitle: focused.Title,
		PID:         focused.PID,
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	if d.bus != nil {
		err := d.bus.Close()
		d.bus = nil
		return err
	}
	return nil
}
