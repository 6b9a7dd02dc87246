package models

// Status is the lifecycle state of a Segment
type Status string

const (
	StatusRunning Status = "Running"
	StatusStopped Status = "Stopped"
)

// Segment is one contiguous interval of focus on a single window
type Segment struct {
	WindowTitle string  `json:"window"`
	Duration    float64 `json:"duration"` // Duration in seconds
	Status      Status  `json:"status"`
}

// IsRunning reports whether the segment is the open one
func (s Segment) IsRunning() bool {
	return s.Status == StatusRunning
}

// SummaryRow is the total focus time for one window title across the session
type SummaryRow struct {
	WindowTitle  string  `json:"window"`
	TotalSeconds float64 `json:"duration"`
}
