package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"focuslog/internal/config"
	"focuslog/internal/models"
	"focuslog/internal/reporter"
	"focuslog/pkg/window"
)

// Service drives a SegmentLog from a fixed-interval ticker and hands out
// consistent copies of it to readers on other goroutines.
type Service struct {
	config *config.Config
	now    func() time.Time

	mu       sync.RWMutex
	segments *SegmentLog
	running  bool
	stopChan chan struct{}

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func NewService(cfg *config.Config, probe window.Probe) *Service {
	return &Service{
		config:   cfg,
		now:      time.Now,
		segments: NewSegmentLog(probe),
		subs:     make(map[int]chan struct{}),
	}
}

// Start tracks until ctx is cancelled or Stop is called. The first probe
// happens immediately; later ones follow the configured poll interval.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("tracker is already running")
	}
	s.running = true
	stop := make(chan struct{})
	s.stopChan = stop

	if err := s.segments.Initialize(s.now()); err == nil {
		title, _ := s.segments.Active()
		log.Printf("Initial track: %s", title)
	}
	s.mu.Unlock()
	s.notify()

	log.Printf("Starting tracker with %v poll interval", s.config.Tracker.PollInterval)

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Tracker stopped by context")
			s.setStopped()
			return ctx.Err()

		case <-stop:
			log.Println("Tracker stopped")
			s.setStopped()
			return nil

		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Service) setStopped() {
	s.mu.Lock()
	s.running = false
	s.stopChan = nil
	s.mu.Unlock()
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// tick runs one probe/update cycle and wakes subscribers
func (s *Service) tick() {
	s.mu.Lock()
	prevTitle, _ := s.segments.Active()
	prevRollbacks := s.segments.Rollbacks()

	s.segments.Update(s.now())

	title, _ := s.segments.Active()
	rollbacks := s.segments.Rollbacks()
	s.mu.Unlock()

	if title != prevTitle {
		log.Printf("Tracked: %s -> %s", prevTitle, title)
	}
	if rollbacks != prevRollbacks {
		log.Printf("Clock moved backwards; clamped (total rollbacks: %d)", rollbacks)
	}

	s.notify()
}

// Snapshot returns a copy of the segment log taken under the lock
func (s *Service) Snapshot() []models.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segments.Snapshot()
}

// Summary aggregates a fresh snapshot
func (s *Service) Summary() []models.SummaryRow {
	return reporter.Summarize(s.Snapshot())
}

// State returns a copy of the segment log together with the focused window
// and when it gained focus, all read under one lock.
func (s *Service) State() ([]models.Segment, string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, since := s.segments.Active()
	return s.segments.Snapshot(), current, since
}

func (s *Service) Rollbacks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segments.Rollbacks()
}

// Subscribe returns a channel that receives a value after every tick, and a
// function that cancels the subscription. Slow readers miss ticks rather than
// delaying the tracker.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Service) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
