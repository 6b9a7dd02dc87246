package models

import "time"

type ReportRow struct {
	WindowTitle  string  `json:"window"`
	TotalSeconds float64 `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SegmentCount int     `json:"segment_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type Report struct {
	Rows         []ReportRow `json:"rows"`
	Segments     int         `json:"segments"`
	TotalSeconds float64     `json:"total_seconds"`
	TotalMinutes float64     `json:"total_minutes"`
	TotalHours   float64     `json:"total_hours"`
	GeneratedAt  time.Time   `json:"generated_at"`
}
