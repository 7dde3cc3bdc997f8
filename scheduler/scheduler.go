// Package scheduler multiplexes three periodic producers (beacon,
// bulletin, reference-cache refresh) and one on-demand producer
// (dispatcher responses) onto the single outbound session, enforcing
// the response-before-beacon-before-bulletin ordering only insofar as
// each category is emitted atomically (spec.md §5).
//
// The dual select over a channel plus a batch/size timer is taken
// directly from the teacher's archive.go's insertLoop; the
// ticker-driven periodic job is taken directly from its cleanupLoop.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/joergschultzelutter/mpad/session"
)

// Job is a periodic producer: it runs immediately on Start if
// RunImmediately is set, then every Interval (spec.md Design Notes
// §9's "run-now-then-on-interval is a first-class job attribute").
type Job struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool
	Fn             func(context.Context)
}

// ResponseJob carries one already-fragmented outbound response plus
// the category each fragment should be paced under.
type ResponseJob struct {
	Fragments []string
	Category  session.Category
}

// Scheduler owns the beacon/bulletin/refresh tickers and the incoming
// response queue, and sends every response, beacon and bulletin through
// session.Session.Send (ingress sends acks through Send directly).
type Scheduler struct {
	sess      *session.Session
	responses chan ResponseJob
	jobs      []Job
	stop      chan struct{}
}

// New returns a Scheduler that writes through sess. Register periodic
// jobs (beacon/bulletin/refresh) with AddJob before calling Start.
func New(sess *session.Session, responseQueueSize int) *Scheduler {
	if responseQueueSize <= 0 {
		responseQueueSize = 256
	}
	return &Scheduler{
		sess:      sess,
		responses: make(chan ResponseJob, responseQueueSize),
		stop:      make(chan struct{}),
	}
}

// AddJob registers a periodic producer. Call before Start.
func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// Enqueue pushes a dispatcher response's fragments onto the outbound
// queue as a single atomic unit (spec.md §5: "each is atomic").
func (s *Scheduler) Enqueue(j ResponseJob) {
	select {
	case s.responses <- j:
	default:
		log.Printf("scheduler: response queue full, dropping %d fragments", len(j.Fragments))
	}
}

// Start launches the response consumer and every registered periodic
// job, each in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	go s.responseLoop(ctx)
	for _, j := range s.jobs {
		go s.runJob(ctx, j)
	}
}

// Stop signals all loops to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
}

// QueueDepth reports how many response jobs are currently buffered,
// for the operator console's scheduler pane.
func (s *Scheduler) QueueDepth() int {
	return len(s.responses)
}

func (s *Scheduler) responseLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case job := <-s.responses:
			for _, frag := range job.Fragments {
				if err := s.sess.Send(ctx, frag, job.Category); err != nil {
					log.Printf("scheduler: send failed: %v", err)
					break
				}
			}
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, j Job) {
	if j.RunImmediately {
		j.Fn(ctx)
	}

	interval := j.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			j.Fn(ctx)
		}
	}
}
