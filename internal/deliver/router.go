// Package deliver routes batches of new jobs to notification sinks. It is
// side-effect only: it never mutates records or cache state, and no failure
// here ever propagates to the pipeline.
package deliver

import (
	"fmt"
	"log"
	"time"

	"go-jobradar-automation/internal/jobs"
)

// Sink is the notification contract. Send errors are caught and logged at
// this boundary, never re-raised.
type Sink interface {
	SendJob(r jobs.Record) error
	SendStatus(message string) error
}

// Router fans a batch out to the sinks registered for its role category,
// rendering at most Cap individual cards per sink and one overflow notice
// for the remainder.
type Router struct {
	sinks        map[string][]Sink
	defaultSinks []Sink
	cap          int
	messageDelay time.Duration
}

func NewRouter(cap int, messageDelay time.Duration) *Router {
	return &Router{
		sinks:        make(map[string][]Sink),
		cap:          cap,
		messageDelay: messageDelay,
	}
}

// Register attaches a sink to a role category. An empty category registers
// the default sink used when a category has no sinks of its own.
func (r *Router) Register(category string, s Sink) {
	if category == "" || category == "default" {
		r.defaultSinks = append(r.defaultSinks, s)
		return
	}
	r.sinks[category] = append(r.sinks[category], s)
}

// Deliver sends the batch to every sink for the category. One sink failing
// never blocks another; per-message failures are logged and the batch
// continues.
func (r *Router) Deliver(records []jobs.Record, label, category string) {
	if len(records) == 0 {
		return
	}

	sinks := r.sinks[category]
	if len(sinks) == 0 {
		sinks = r.defaultSinks
	}
	if len(sinks) == 0 {
		log.Printf("⚠️ No sink registered for category %q, dropping %d notifications", category, len(records))
		return
	}

	shown := records
	overflow := 0
	if r.cap > 0 && len(records) > r.cap {
		shown = records[:r.cap]
		overflow = len(records) - r.cap
	}

	for _, sink := range sinks {
		for i, rec := range shown {
			if i > 0 {
				//pace messages to avoid 429 from the sink
				time.Sleep(r.messageDelay)
			}
			if err := sink.SendJob(rec); err != nil {
				log.Printf("⚠️ Failed to send job %s (%s): %v", rec.ID, label, err)
			}
		}
		if overflow > 0 {
			notice := fmt.Sprintf("%d more new %s jobs not shown. Check the full feed.", overflow, label)
			if err := sink.SendStatus(notice); err != nil {
				log.Printf("⚠️ Failed to send overflow notice (%s): %v", label, err)
			}
		}
	}
}
