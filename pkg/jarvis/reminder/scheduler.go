// Package reminder – scheduler.go drives the poll loop that fires due
// reminders.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const (
	// pollSpec is the fixed poll cadence.
	pollSpec = "@every 1s"

	// defaultBatchSize bounds how many reminders one poll cycle delivers,
	// keeping the tail latency of a single cycle predictable.
	defaultBatchSize = 50

	// deliverTimeout bounds one outbound notification.
	deliverTimeout = 10 * time.Second

	// deliverConcurrency bounds parallel deliveries within one batch.
	deliverConcurrency = 4
)

// NotifyFunc delivers a fired reminder to its owner channel.
type NotifyFunc func(ctx context.Context, channel, body string) error

// Scheduler owns the due queue: it accepts new reminders and fires them at
// most once. Delivery failures are logged and dropped — a reminder arriving
// an hour late is worse than one silently lost, so there are no retries.
type Scheduler struct {
	storage Storage
	notify  NotifyFunc
	logger  *slog.Logger

	cron      *cron.Cron
	batchSize int

	// pollMu ensures only one poll cycle runs at a time; a tick that
	// arrives while the previous cycle is still delivering is skipped.
	pollMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler over the given storage and delivery function.
func New(storage Storage, notify NotifyFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		storage:   storage,
		notify:    notify,
		logger:    logger.With("component", "scheduler"),
		batchSize: defaultBatchSize,
	}
}

// Schedule stores a reminder and returns its id.
func (s *Scheduler) Schedule(channel, body string, fireAt time.Time) (string, error) {
	entry := &Entry{
		ID:        uuid.NewString(),
		Channel:   channel,
		Body:      body,
		FireAt:    fireAt,
		CreatedAt: time.Now(),
	}
	if err := s.storage.Put(entry); err != nil {
		return "", fmt.Errorf("schedule reminder: %w", err)
	}
	s.logger.Info("reminder scheduled",
		"id", entry.ID,
		"channel", channel,
		"fire_at", fireAt.Format(time.RFC3339),
	)
	return entry.ID, nil
}

// List returns the channel's pending reminders ordered by fire time.
func (s *Scheduler) List(channel string) ([]*Entry, error) {
	return s.storage.List(channel)
}

// Delete cancels a reminder owned by the channel before it fires.
func (s *Scheduler) Delete(channel, id string) (bool, error) {
	ok, err := s.storage.Delete(channel, id)
	if err == nil && ok {
		s.logger.Info("reminder deleted", "id", id, "channel", channel)
	}
	return ok, err
}

// Pending returns the number of reminders waiting to fire.
func (s *Scheduler) Pending() (int, error) {
	return s.storage.Count()
}

// Start begins the 1-second poll loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(pollSpec, func() {
		s.pollOnce(time.Now())
	}); err != nil {
		return fmt.Errorf("register poll job: %w", err)
	}
	s.cron.Start()

	s.logger.Info("scheduler started", "poll", pollSpec)
	return nil
}

// Stop halts polling and waits briefly for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
			s.logger.Warn("scheduler stop timed out")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// pollOnce claims every entry due at now and delivers the batch. Claiming
// removes entries from storage first, so reminders fire at most once even
// if delivery fails or the process dies mid-batch.
func (s *Scheduler) pollOnce(now time.Time) {
	if !s.pollMu.TryLock() {
		return // previous cycle still delivering
	}
	defer s.pollMu.Unlock()

	due, err := s.storage.ClaimDue(now, s.batchSize)
	if err != nil {
		s.logger.Error("claim due reminders failed", "error", err)
		return
	}

	// Deliveries in one batch are independent; run them concurrently but
	// keep a lid on outbound connections.
	var g errgroup.Group
	g.SetLimit(deliverConcurrency)
	for _, entry := range due {
		entry := entry
		g.Go(func() error {
			s.deliver(entry)
			return nil
		})
	}
	g.Wait()
}

func (s *Scheduler) deliver(entry *Entry) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, deliverTimeout)
	defer cancel()

	if err := s.notify(ctx, entry.Channel, entry.Body); err != nil {
		// Fire and forget: the entry is already claimed, never retried.
		s.logger.Error("reminder delivery failed",
			"id", entry.ID,
			"channel", entry.Channel,
			"error", err,
		)
		return
	}
	s.logger.Info("reminder fired",
		"id", entry.ID,
		"channel", entry.Channel,
		"late", time.Since(entry.FireAt).String(),
	)
}
