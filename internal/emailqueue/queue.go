// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package emailqueue decouples transactional email from the request path.
//
// A Queue holds jobs in memory, ordered by (priority, insertion sequence),
// and drains them with at most one worker goroutine: exactly one email is
// in flight at a time. Failed deliveries are retried with linear backoff
// (retryDelay * attempts) by moving the job to the tail; a job that
// exhausts its attempts is logged and dropped. Nothing is persisted, so
// pending jobs are lost on restart.
//
// The composition root owns the single Queue and hands it to every
// component that sends email.
package emailqueue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
)

// Mailer delivers each kind of email. internal/mail implements it.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, p OrderConfirmation) error
	SendPasswordReset(ctx context.Context, p PasswordReset) error
	SendVerificationOTP(ctx context.Context, p VerificationOTP) error
}

// Config tunes the queue.
type Config struct {
	// RetryDelay is the backoff base: attempt n waits RetryDelay*n.
	RetryDelay time.Duration

	// Pacing is the pause after every processed job, success or not.
	Pacing time.Duration

	// SendTimeout bounds a single delivery so a hung transport cannot
	// stall the queue.
	SendTimeout time.Duration

	DefaultPriority    int
	DefaultMaxAttempts int

	// OnJobDone, if set, observes every job as it leaves the queue as
	// completed or failed.
	OnJobDone func(Job)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		RetryDelay:         2 * time.Second,
		Pacing:             500 * time.Millisecond,
		SendTimeout:        30 * time.Second,
		DefaultPriority:    5,
		DefaultMaxAttempts: 3,
	}
}

// ErrClosed is returned by Enqueue after the queue has shut down.
var ErrClosed = errors.New("email queue is closed")

// Queue is safe for concurrent use.
type Queue struct {
	mailer Mailer
	cfg    Config
	logger zerolog.Logger

	mu         sync.Mutex
	jobs       []*Job
	processing bool
	inFlight   *Job
	seq        uint64
	closed     bool

	// wake nudges a worker that is waiting for delayed jobs.
	wake chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an idle queue. Call Close (or run Serve under a supervisor)
// to stop the worker on shutdown.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(mailer Mailer, cfg Config, logger zerolog.Logger) *Queue {
	def := DefaultConfig()
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.DefaultMaxAttempts < 1 {
		cfg.DefaultMaxAttempts = def.DefaultMaxAttempts
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With().Str("component", "email-queue").Logger(),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue adds a job and starts the worker if it is idle. It never waits
// for delivery.
func (q *Queue) Enqueue(payload Payload, opts ...Option) (string, error) {
	if payload == nil {
		return "", models.NewValidationError("email payload is required")
	}
	if payload.Recipient() == "" {
		return "", models.NewValidationError("email recipient is required")
	}

	now := time.Now()
	job := &Job{
		ID:          newJobID(now),
		Type:        payload.Type(),
		Payload:     payload,
		Priority:    q.cfg.DefaultPriority,
		MaxAttempts: q.cfg.DefaultMaxAttempts,
		CreatedAt:   now,
		Status:      StatusWaiting,
	}
	for _, opt := range opts {
		opt(job)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", ErrClosed
	}
	q.seq++
	job.seq = q.seq
	q.jobs = append(q.jobs, job)
	q.sortLocked()
	depth := len(q.jobs)
	start := !q.processing
	if start {
		q.processing = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	metrics.EmailJobsEnqueued.WithLabelValues(string(job.Type)).Inc()
	metrics.EmailQueueDepth.Set(float64(depth))
	q.logger.Debug().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Int("priority", job.Priority).
		Int("depth", depth).
		Msg("email job enqueued")

	if start {
		go q.run()
	} else {
		q.signal()
	}
	return job.ID, nil
}

// sortLocked orders by priority, then insertion sequence.
func (q *Queue) sortLocked() {
	sort.SliceStable(q.jobs, func(i, j int) bool {
		if q.jobs[i].Priority != q.jobs[j].Priority {
			return q.jobs[i].Priority < q.jobs[j].Priority
		}
		return q.jobs[i].seq < q.jobs[j].seq
	})
}

// requeueLocked puts job at the tail with a fresh sequence number.
func (q *Queue) requeueLocked(job *Job) {
	q.seq++
	job.seq = q.seq
	q.jobs = append(q.jobs, job)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run is the worker loop. It exits when the queue is empty at the start of
// an iteration; the next Enqueue starts a new one.
func (q *Queue) run() {
	defer q.wg.Done()

	rotations := 0
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 || q.ctx.Err() != nil {
			q.processing = false
			q.mu.Unlock()
			return
		}

		job := q.jobs[0]
		q.jobs = q.jobs[1:]

		if job.Delay > 0 {
			q.armTimerLocked(job)
			q.requeueLocked(job)
			rotations++
			allDelayed := rotations >= len(q.jobs)
			q.mu.Unlock()

			if allDelayed {
				select {
				case <-q.wake:
				case <-q.ctx.Done():
				}
				rotations = 0
			}
			continue
		}

		rotations = 0
		job.Status = StatusProcessing
		q.inFlight = job
		q.mu.Unlock()

		err := q.dispatch(job)
		q.finish(job, err)

		q.pace()
	}
}

// armTimerLocked schedules the delay to clear. The job stays in the queue
// meanwhile.
func (q *Queue) armTimerLocked(job *Job) {
	if job.timerArmed {
		return
	}
	job.timerArmed = true
	job.timer = time.AfterFunc(job.Delay, func() {
		q.mu.Lock()
		job.Delay = 0
		job.timerArmed = false
		job.timer = nil
		q.mu.Unlock()
		q.signal()
	})
}

// dispatch sends one job under the send timeout. A panicking mailer counts
// as a failed attempt.
func (q *Queue) dispatch(job *Job) (err error) {
	ctx, cancel := context.WithTimeout(q.ctx, q.cfg.SendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailer panic: %v", r)
		}
	}()

	switch p := job.Payload.(type) {
	case OrderConfirmation:
		return q.mailer.SendOrderConfirmation(ctx, p)
	case PasswordReset:
		return q.mailer.SendPasswordReset(ctx, p)
	case VerificationOTP:
		return q.mailer.SendVerificationOTP(ctx, p)
	default:
		return fmt.Errorf("unknown email job payload %T", job.Payload)
	}
}

func (q *Queue) finish(job *Job, err error) {
	q.mu.Lock()
	q.inFlight = nil
	job.Attempts++

	var done bool
	switch {
	case err == nil:
		job.Status = StatusCompleted
		done = true
	case job.Attempts < job.MaxAttempts:
		job.Status = StatusRetrying
		job.LastError = err.Error()
		job.Delay = q.cfg.RetryDelay * time.Duration(job.Attempts)
		q.requeueLocked(job)
	default:
		job.Status = StatusFailed
		job.LastError = err.Error()
		done = true
	}
	depth := len(q.jobs)
	snapshot := *job
	q.mu.Unlock()

	metrics.EmailQueueDepth.Set(float64(depth))
	log := q.logger.With().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Int("attempt", snapshot.Attempts).
		Int("max_attempts", snapshot.MaxAttempts).
		Logger()

	switch snapshot.Status {
	case StatusCompleted:
		metrics.EmailJobsFinished.WithLabelValues(string(job.Type), "completed").Inc()
		log.Info().Msg("email sent")
	case StatusRetrying:
		metrics.EmailJobRetries.WithLabelValues(string(job.Type)).Inc()
		log.Warn().Err(err).Dur("retry_in", snapshot.Delay).Msg("email send failed, will retry")
	case StatusFailed:
		metrics.EmailJobsFinished.WithLabelValues(string(job.Type), "failed").Inc()
		log.Error().Err(err).Msg("email permanently failed, dropping job")
	}

	if done && q.cfg.OnJobDone != nil {
		q.cfg.OnJobDone(snapshot)
	}
}

func (q *Queue) pace() {
	if q.cfg.Pacing <= 0 {
		return
	}
	t := time.NewTimer(q.cfg.Pacing)
	defer t.Stop()
	select {
	case <-t.C:
	case <-q.ctx.Done():
	}
}

// Stats is a point-in-time view of the queue. Counts cover queued jobs
// only; the job being delivered is reported through InFlight.
type Stats struct {
	Total      int    `json:"total"`
	Waiting    int    `json:"waiting"`
	Processing int    `json:"processing"`
	Retrying   int    `json:"retrying"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
	Active     bool   `json:"isProcessing"`
	InFlight   string `json:"inFlight,omitempty"`
}

// Status is read-only and safe to call at any time.
func (q *Queue) Status() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Stats{Total: len(q.jobs), Active: q.processing}
	for _, j := range q.jobs {
		switch j.Status {
		case StatusWaiting:
			s.Waiting++
		case StatusProcessing:
			s.Processing++
		case StatusRetrying:
			s.Retrying++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	if q.inFlight != nil {
		s.InFlight = q.inFlight.ID
	}
	return s
}

// Clear drops every queued job and returns how many were dropped. The job
// currently being delivered is not interrupted.
func (q *Queue) Clear() int {
	q.mu.Lock()
	n := len(q.jobs)
	for _, j := range q.jobs {
		if j.timer != nil {
			j.timer.Stop()
		}
	}
	q.jobs = nil
	q.mu.Unlock()

	metrics.EmailQueueDepth.Set(0)
	q.logger.Warn().Int("dropped", n).Msg("email queue cleared")
	q.signal()
	return n
}

// Close stops accepting jobs, cancels any in-flight delivery and waits for
// the worker to exit. Pending jobs are discarded.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, j := range q.jobs {
		if j.timer != nil {
			j.timer.Stop()
		}
	}
	pending := len(q.jobs)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	if pending > 0 {
		q.logger.Warn().Int("pending", pending).Msg("email queue closed with pending jobs")
	}
}

// Serve blocks until ctx is done and then closes the queue, so the queue
// can run as a supervised service.
func (q *Queue) Serve(ctx context.Context) error {
	<-ctx.Done()
	q.Close()
	return nil
}

func (q *Queue) String() string {
	return "email-queue"
}
