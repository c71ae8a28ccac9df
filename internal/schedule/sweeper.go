package schedule

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Sweeper wraps robfig/cron for daemon mode: one full sweep every N hours,
// plus an immediate first run so the feed is populated without waiting for
// the first tick.
type Sweeper struct {
	cron *cron.Cron
	spec string
	fn   func()
}

func NewSweeper(everyHours int, fn func()) *Sweeper {
	return &Sweeper{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		spec: fmt.Sprintf("@every %dh", everyHours),
		fn:   fn,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.fn); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	log.Printf("⏰ Sweeper started — spec: %s", s.spec)

	//run immediately on startup (non-blocking)
	go s.fn()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("⏰ Sweeper stopped")
}
