package services

import (
	"context"
	"errors"
	"sync"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

var errRemote = errors.New("remote unavailable")

// fakeRemote is a scriptable remote.Store.
type fakeRemote struct {
	mu        sync.Mutex
	txns      []core.Record
	cats      []core.Record
	listErr   error
	createErr error
	updateErr error
	block     chan struct{} // when set, writes wait on it or ctx
	// hooks run outside the lock so they may call back into the fake
	afterCreate  func()
	beforeUpdate func()
	created   []map[string]any
	updated   map[string]map[string]any
	listCalls int
	nextID    int
}

func (f *fakeRemote) ListTransactions(ctx context.Context) ([]core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]core.Record(nil), f.txns...), nil
}

func (f *fakeRemote) ListCategories(ctx context.Context) ([]core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]core.Record(nil), f.cats...), nil
}

func (f *fakeRemote) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error) {
	if err := f.wait(ctx); err != nil {
		return core.Record{}, err
	}
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return core.Record{}, f.createErr
	}
	f.nextID++
	f.created = append(f.created, fields)
	rec := core.Record{ID: "rec" + string(rune('A'+f.nextID-1)), Fields: fields}
	f.txns = append(f.txns, rec)
	hook := f.afterCreate
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return rec, nil
}

func (f *fakeRemote) UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error) {
	if err := f.wait(ctx); err != nil {
		return core.Record{}, err
	}
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return core.Record{}, f.updateErr
	}
	if f.updated == nil {
		f.updated = map[string]map[string]any{}
	}
	f.updated[id] = fields
	return core.Record{ID: id, Fields: fields}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.MutationEvent
	err    error
}

func (p *recordingPublisher) PublishMutation(_ context.Context, evt *amqp.MutationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}
