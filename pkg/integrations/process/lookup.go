package process

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// NameForPID returns the executable name of pid, or "" when it cannot be read
// (the process exited, or it belongs to a sandbox we cannot inspect).
func NameForPID(pid int) string {
	if pid <= 0 {
		return ""
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}

	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}

// Platform describes the host OS, e.g. "linux ubuntu 24.04"
func Platform() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read host info: %w", err)
	}

	parts := []string{info.OS}
	if info.Platform != "" {
		parts = append(parts, info.Platform)
	}
	if info.PlatformVersion != "" {
		parts = append(parts, info.PlatformVersion)
	}
	return strings.Join(parts, " "), nil
}

// FirstRunning returns the first of names that matches a running process
func FirstRunning(names ...string) (string, bool) {
	procs, err := process.Processes()
	if err != nil {
		return "", false
	}

	running := make(map[string]bool, len(procs))
	for _, proc := range procs {
		if name, err := proc.Name(); err == nil {
			running[name] = true
		}
	}

	for _, name := range names {
		if running[name] {
			return name, true
		}
	}
	return "", false
}
