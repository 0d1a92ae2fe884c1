package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/store"
)

const DefaultRemoteTimeout = 10 * time.Second

// MutationState is the lifecycle of one optimistic add or edit.
type MutationState int

const (
	StateIdle MutationState = iota
	StateApplying
	StatePersisting
	StateCommitted
	StateRolledBack
)

func (s MutationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplying:
		return "applying"
	case StatePersisting:
		return "persisting"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventPublisher receives the outcome of every mutation.
type EventPublisher interface {
	PublishMutation(ctx context.Context, evt *amqp.MutationEvent) error
}

type MutationCoordinator struct {
	txns    *store.TransactionStore
	remote  remote.TransactionWriter
	events  EventPublisher
	logger  *applog.Logger
	timeout time.Duration
	tempID  func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type CoordinatorOption func(*MutationCoordinator)

func WithEventPublisher(p EventPublisher) CoordinatorOption {
	return func(c *MutationCoordinator) { c.events = p }
}

func WithRemoteTimeout(d time.Duration) CoordinatorOption {
	return func(c *MutationCoordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithCoordinatorLogger(l *applog.Logger) CoordinatorOption {
	return func(c *MutationCoordinator) { c.logger = l.WithComponent(applog.ComponentMutation) }
}

func NewMutationCoordinator(txns *store.TransactionStore, w remote.TransactionWriter, opts ...CoordinatorOption) *MutationCoordinator {
	c := &MutationCoordinator{
		txns:     txns,
		remote:   w,
		logger:   applog.Discard(),
		timeout:  DefaultRemoteTimeout,
		tempID:   func() string { return core.TempIDPrefix + uuid.NewString() },
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add inserts t at the head of the store under a temporary id, then creates
// it remotely. On success the temporary record is replaced in place by the
// confirmed one, or dropped if a refresh already loaded it; on failure it is
// removed and the store is left as it was.
func (c *MutationCoordinator) Add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = c.tempID()
	if err := c.acquire(t.ID); err != nil {
		return core.Transaction{}, err
	}
	defer c.release(t.ID)

	log := c.logger.With(applog.FieldOperation, applog.OpAdd, applog.FieldTempID, t.ID)

	c.txns.Prepend(t)
	log.DebugContext(ctx, "mutation state", applog.FieldState, StateApplying)

	log.DebugContext(ctx, "mutation state", applog.FieldState, StatePersisting)
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	rec, err := c.remote.CreateTransaction(rctx, t.Fields())
	cancel()
	if err == nil && rec.ID == "" {
		err = errors.New("remote returned a record without id")
	}
	if err != nil {
		c.txns.Remove(t.ID)
		log.WarnContext(ctx, "add rolled back", applog.FieldState, StateRolledBack, applog.FieldError, err)
		c.publish(ctx, applog.OpAdd, StateRolledBack, t, t.ID, err)
		return core.Transaction{}, fmt.Errorf("%w: create transaction: %w", core.ErrMutationFailed, err)
	}

	confirmed := confirm(t, rec)
	c.txns.Commit(t.ID, confirmed)
	log.InfoContext(ctx, "add committed", applog.FieldState, StateCommitted, applog.FieldTransactionID, confirmed.ID)
	c.publish(ctx, applog.OpAdd, StateCommitted, confirmed, t.ID, nil)
	return confirmed, nil
}

// Edit applies p to the record with the given id in place, then updates it
// remotely. On failure the original record is restored exactly.
func (c *MutationCoordinator) Edit(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := c.acquire(id); err != nil {
		return core.Transaction{}, err
	}
	defer c.release(id)

	original, ok := c.txns.Get(id)
	if !ok || original.ID == "" {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	updated := original.Apply(p)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	log := c.logger.With(applog.FieldOperation, applog.OpEdit, applog.FieldTransactionID, id)

	c.txns.Swap(id, updated)
	log.DebugContext(ctx, "mutation state", applog.FieldState, StateApplying)

	log.DebugContext(ctx, "mutation state", applog.FieldState, StatePersisting)
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	_, err := c.remote.UpdateTransaction(rctx, id, updated.Fields())
	cancel()
	if err != nil {
		c.txns.Swap(id, original)
		log.WarnContext(ctx, "edit rolled back", applog.FieldState, StateRolledBack, applog.FieldError, err)
		c.publish(ctx, applog.OpEdit, StateRolledBack, original, "", err)
		return core.Transaction{}, fmt.Errorf("%w: update transaction %s: %w", core.ErrMutationFailed, id, err)
	}

	// a refresh during the update may have reloaded the pre-edit row
	c.txns.Swap(id, updated)
	log.InfoContext(ctx, "edit committed", applog.FieldState, StateCommitted)
	c.publish(ctx, applog.OpEdit, StateCommitted, updated, "", nil)
	return updated, nil
}

// InFlight reports whether a mutation on id is pending.
func (c *MutationCoordinator) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[id]
	return ok
}

func (c *MutationCoordinator) acquire(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return fmt.Errorf("transaction %s: %w", id, core.ErrMutationInFlight)
	}
	c.inFlight[id] = struct{}{}
	return nil
}

func (c *MutationCoordinator) release(id string) {
	c.mu.Lock()
	delete(c.inFlight, id)
	c.mu.Unlock()
}

func (c *MutationCoordinator) publish(ctx context.Context, op string, state MutationState, t core.Transaction, tempID string, cause error) {
	if c.events == nil {
		return
	}
	evt := amqp.NewMutationEvent(op, amqp.StateCommitted, t.ID)
	if state == StateRolledBack {
		evt.State = amqp.StateRolledBack
	}
	if tempID != "" && tempID != t.ID {
		evt.TempID = tempID
	}
	evt.Date = t.Date.String()
	evt.Category = t.CategoryName()
	if t.Amount.Valid {
		evt.Amount = t.Amount.Decimal.String()
	}
	if cause != nil {
		evt.Error = cause.Error()
	}
	// the mutation outcome stands regardless of delivery
	if err := c.events.PublishMutation(context.WithoutCancel(ctx), evt); err != nil {
		c.logger.WarnContext(ctx, "failed to publish mutation event", applog.FieldOperation, op, applog.FieldError, err)
	}
}

// confirm builds the committed record from the server echo, keeping the
// local value for any field the server did not send back in usable form.
func confirm(local core.Transaction, rec core.Record) core.Transaction {
	echo := core.TransactionFromRecord(rec)
	out := local
	out.ID = rec.ID
	if !echo.Date.IsZero() {
		out.Date = echo.Date
	}
	if echo.Amount.Valid {
		out.Amount = echo.Amount
	}
	if echo.Category != "" {
		out.Category = echo.Category
	}
	if _, ok := rec.Fields[core.FieldDescription]; ok {
		out.Description = echo.Description
	}
	return out
}
