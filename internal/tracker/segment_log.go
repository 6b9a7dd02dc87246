package tracker

import (
	"time"

	"github.com/pkg/errors"

	"focuslog/internal/models"
	"focuslog/pkg/window"
)

// ErrAlreadyStarted is returned by a second call to Initialize
var ErrAlreadyStarted = errors.New("segment log already started")

// SegmentLog is the ordered history of focus segments for one session.
//
// The last segment is the Running one while tracking; every earlier segment
// is Stopped and never changes again. Durations are recomputed from the
// segment's start time on every Update, so missed or late ticks do not skew
// them.
//
// SegmentLog is not safe for concurrent use; Service serializes access.
type SegmentLog struct {
	probe window.Probe

	segments    []models.Segment
	activeTitle string
	activeStart time.Time
	lastTick    time.Time
	started     bool
	rollbacks   int
}

func NewSegmentLog(probe window.Probe) *SegmentLog {
	return &SegmentLog{probe: probe}
}

// Initialize probes the current window and opens the first Running segment
func (l *SegmentLog) Initialize(now time.Time) error {
	if l.started {
		return ErrAlreadyStarted
	}

	l.open(l.probe.ActiveWindowTitle(), now)
	l.started = true
	return nil
}

// Update probes the current window. The same title extends the Running
// segment; a different title stops it and opens a new one. On a log that
// was never initialized Update performs the initialization instead.
func (l *SegmentLog) Update(now time.Time) {
	if !l.started {
		_ = l.Initialize(now)
		return
	}

	title := l.probe.ActiveWindowTitle()
	running := &l.segments[len(l.segments)-1]
	running.Duration = l.elapsed(now)

	if title == l.activeTitle {
		return
	}

	running.Status = models.StatusStopped
	l.open(title, now)
}

func (l *SegmentLog) open(title string, now time.Time) {
	l.segments = append(l.segments, models.Segment{
		WindowTitle: title,
		Duration:    0,
		Status:      models.StatusRunning,
	})
	l.activeTitle = title
	l.activeStart = now
	l.lastTick = now
}

// elapsed is the Running segment's age at now. A clock that moved backwards
// since the last tick contributes zero: the start is shifted back by the same
// step so the segment keeps the duration it already had.
func (l *SegmentLog) elapsed(now time.Time) float64 {
	if now.Before(l.lastTick) {
		l.rollbacks++
		l.activeStart = l.activeStart.Add(now.Sub(l.lastTick))
	}
	l.lastTick = now

	d := now.Sub(l.activeStart).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Snapshot returns a copy of the segments in creation order
func (l *SegmentLog) Snapshot() []models.Segment {
	out := make([]models.Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

// Active returns the Running segment's title and start time
func (l *SegmentLog) Active() (string, time.Time) {
	return l.activeTitle, l.activeStart
}

func (l *SegmentLog) Started() bool {
	return l.started
}

func (l *SegmentLog) Len() int {
	return len(l.segments)
}

// Rollbacks counts updates that saw the clock earlier than the previous tick
func (l *SegmentLog) Rollbacks() int {
	return l.rollbacks
}
