package models

import "time"

// SegmentRecord is the archived form of a Segment
type SegmentRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Seq         int       `gorm:"not null;uniqueIndex" json:"seq"`
	WindowTitle string    `gorm:"not null;index" json:"window_title"`
	Duration    float64   `gorm:"not null;default:0" json:"duration"` // Duration in seconds
	Status      string    `gorm:"not null" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SummaryRecord is the archived form of a SummaryRow
type SummaryRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Rank         int       `gorm:"not null;uniqueIndex" json:"rank"`
	WindowTitle  string    `gorm:"not null" json:"window_title"`
	TotalSeconds float64   `gorm:"not null;default:0" json:"total_seconds"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
