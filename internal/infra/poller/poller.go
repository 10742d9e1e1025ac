package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/algovyborg/lesson-payments/internal/infra/http/middleware"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
	"github.com/algovyborg/lesson-payments/internal/usecase"
)

var (
	// ErrAlreadyRunning rejects a trigger while a run is in flight. Triggers
	// are never queued.
	ErrAlreadyRunning = errors.New("poll run already in progress")
	ErrAlreadyStarted = errors.New("poller schedule already started")
	ErrAlreadyStopped = errors.New("poller schedule already stopped")
)

// EventSource is the slice of the CRM gateway the poller needs.
type EventSource interface {
	GetInvoicePaidEvents(ctx context.Context, createdAtSince int64) ([]amocrm.Event, error)
}

// EventProcessor reconciles one event; it never returns an error because
// every failure is terminal and already recorded.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev amocrm.Event) usecase.ProcessOutcome
}

type Status struct {
	IsRunning      bool   `json:"is_running"`
	Scheduled      bool   `json:"scheduled"`
	CronExpression string `json:"cron_expression"`
}

// Poller drives the reconciliation pipeline on a cron schedule. At most one
// run executes at a time, and the cursor only advances after a run completes
// its whole batch.
type Poller struct {
	mu        sync.Mutex
	running   bool
	scheduled bool
	cron      *cron.Cron

	state     *StateStorage
	events    EventSource
	processor EventProcessor
	notifier  usecase.Notifier
}

func New(state *StateStorage, events EventSource, processor EventProcessor, notifier usecase.Notifier) *Poller {
	return &Poller{
		state:     state,
		events:    events,
		processor: processor,
		notifier:  notifier,
	}
}

// Start arms the schedule. It does not touch the cursor and does not trigger
// an immediate run.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduled {
		return ErrAlreadyStarted
	}

	expr := p.state.CronExpression()
	c := cron.New()
	if _, err := c.AddFunc(expr, p.tick); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	c.Start()

	p.cron = c
	p.scheduled = true
	log.Printf("🕒 poller started with cron %q", expr)
	return nil
}

// Stop disarms the schedule. A run already in progress is not aborted.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.scheduled {
		return ErrAlreadyStopped
	}

	p.cron.Stop()
	p.cron = nil
	p.scheduled = false
	log.Printf("🕒 poller stopped")
	return nil
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Status{
		IsRunning:      p.running,
		Scheduled:      p.scheduled,
		CronExpression: p.state.CronExpression(),
	}
}

func (p *Poller) tick() {
	if err := p.TriggerOnce(context.Background()); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			log.Printf("⚠️ poller tick skipped: previous run still in progress")
			return
		}
		log.Printf("❌ poll run failed: %v", err)
	}
}

// TriggerOnce executes one full poll run synchronously. It rejects with
// ErrAlreadyRunning when a run is in flight. The cursor is persisted before
// the running flag clears, so a crash mid-run replays the same window
// instead of skipping it.
func (p *Poller) TriggerOnce(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.running = true
	p.mu.Unlock()

	err := p.pollOnce(ctx)

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	if err != nil {
		middleware.RecordPollRun("failed")
	} else {
		middleware.RecordPollRun("ok")
	}
	return err
}

func (p *Poller) pollOnce(ctx context.Context) error {
	since := p.state.LastProcessedCreatedAt()

	events, err := p.events.GetInvoicePaidEvents(ctx, since)
	if err != nil {
		// Batch-level failure: abort without touching the cursor so the next
		// tick retries the same window.
		p.notify(p.notifier.LogError, fmt.Sprintf("Poll run aborted, cursor kept at %d:\n%v", since, err))
		return fmt.Errorf("fetch invoice_paid events: %w", err)
	}

	if len(events) == 0 {
		log.Printf("🕒 poll run: no new invoice_paid events since %d", since)
		return nil
	}

	maxCreatedAt := since
	succeeded, failed := 0, 0

	for _, ev := range events {
		out := p.processor.ProcessEvent(ctx, ev)
		middleware.RecordEventOutcome(out)
		if out.Success {
			succeeded++
		} else {
			failed++
		}
		if ev.CreatedAt > maxCreatedAt {
			maxCreatedAt = ev.CreatedAt
		}
	}

	if err := p.state.UpdateLastProcessed(maxCreatedAt + 1); err != nil {
		p.notify(p.notifier.LogError, fmt.Sprintf("Poll run processed %d events but failed to persist cursor: %v", len(events), err))
		return fmt.Errorf("persist poll cursor: %w", err)
	}

	log.Printf("🕒 poll run done: %d events (%d ok, %d dead-lettered), cursor=%d",
		len(events), succeeded, failed, maxCreatedAt+1)
	p.notify(p.notifier.LogInfo, fmt.Sprintf("Poll run done: %d events, %d succeeded, %d dead-lettered. Cursor advanced to %d.",
		len(events), succeeded, failed, maxCreatedAt+1))
	return nil
}

func (p *Poller) notify(fn func(string) error, message string) {
	if err := fn(message); err != nil {
		log.Printf("⚠️ notifier delivery failed: %v", err)
	}
}
