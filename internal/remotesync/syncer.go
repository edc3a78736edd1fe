// Package remotesync pushes local changes to the remote row store. Writes
// are queued per record and retried until they land; the caller never waits
// on the network and a failed push never rolls back local state.
package remotesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/metrics"
	"sppg-kitchen-api-server/internal/store"
)

// RowStore is the remote table store, keyed by record id.
type RowStore interface {
	Name() string
	SelectAll(ctx context.Context, table string, dst any) error
	Upsert(ctx context.Context, table, id string, row any) error
	Delete(ctx context.Context, table, id string) error
}

type opKind string

const (
	opUpsert opKind = "upsert"
	opDelete opKind = "delete"
)

type pending struct {
	table    string
	id       string
	kind     opKind
	row      any
	attempts int
}

func (p pending) key() string { return p.table + "/" + p.id }

type Options struct {
	QueueSize int
	Interval  time.Duration
	Timeout   time.Duration
}

// Status is a point-in-time view of the queue.
type Status struct {
	Remote    string    `json:"remote"`
	Pending   int       `json:"pending"`
	Dropped   int       `json:"dropped"`
	LastFlush time.Time `json:"lastFlush,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

type Syncer struct {
	remote  RowStore
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	queue     []pending
	dropped   int
	lastFlush time.Time
	lastErr   string

	flushMu sync.Mutex
	wake    chan struct{}
}

func New(remote RowStore, opts Options, m *metrics.Metrics, log *zap.Logger) *Syncer {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Syncer{
		remote:  remote,
		opts:    opts,
		log:     log.Named("sync"),
		metrics: m,
		wake:    make(chan struct{}, 1),
	}
}

// Observe queues the remote writes for a committed change. Bulk loads are
// not echoed back.
func (s *Syncer) Observe(_ context.Context, ev store.Event) {
	switch ev.Op {
	case store.OpUpsert:
		for _, row := range ev.Rows {
			s.enqueue(pending{table: ev.Collection, id: row.EntityID(), kind: opUpsert, row: row})
		}
	case store.OpDelete:
		for _, id := range ev.IDs {
			s.enqueue(pending{table: ev.Collection, id: id, kind: opDelete})
		}
	default:
		return
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// enqueue adds op, replacing any older op for the same record. When the
// queue is full the oldest op is dropped.
func (s *Syncer) enqueue(op pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.queue {
		if s.queue[i].key() == op.key() {
			s.queue[i] = op
			return
		}
	}
	if len(s.queue) >= s.opts.QueueSize {
		old := s.queue[0]
		s.queue = s.queue[1:]
		s.dropped++
		s.metrics.SyncDropped.Inc()
		s.log.Warn("sync queue full, dropping oldest write",
			zap.String("table", old.table), zap.String("id", old.id), zap.String("op", string(old.kind)))
	}
	s.queue = append(s.queue, op)
	s.metrics.SyncPending.Set(float64(len(s.queue)))
}

// Flush pushes queued writes in order. It stops at the first failure and
// keeps that write and everything after it queued for the next attempt.
func (s *Syncer) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	var failErr error
	done := 0
	for _, op := range batch {
		if err := s.apply(ctx, op); err != nil {
			failErr = fmt.Errorf("sync %s %s/%s: %w", op.kind, op.table, op.id, err)
			break
		}
		done++
	}
	rest := batch[done:]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFlush = time.Now()
	if failErr != nil {
		s.lastErr = failErr.Error()
		s.requeue(rest)
	} else {
		s.lastErr = ""
	}
	s.metrics.SyncPending.Set(float64(len(s.queue)))
	return failErr
}

// requeue puts failed writes back in front, unless a newer write for the
// same record arrived during the flush. Caller holds s.mu.
func (s *Syncer) requeue(failed []pending) {
	newer := make(map[string]bool, len(s.queue))
	for _, op := range s.queue {
		newer[op.key()] = true
	}
	back := make([]pending, 0, len(failed)+len(s.queue))
	for _, op := range failed {
		if newer[op.key()] {
			continue
		}
		op.attempts++
		back = append(back, op)
	}
	back = append(back, s.queue...)
	if over := len(back) - s.opts.QueueSize; over > 0 {
		s.dropped += over
		s.metrics.SyncDropped.Add(float64(over))
		back = back[over:]
	}
	s.queue = back
}

func (s *Syncer) apply(ctx context.Context, op pending) error {
	var err error
	switch op.kind {
	case opUpsert:
		err = s.remote.Upsert(ctx, op.table, op.id, op.row)
	case opDelete:
		err = s.remote.Delete(ctx, op.table, op.id)
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.SyncOps.WithLabelValues(op.table, string(op.kind), result).Inc()
	return err
}

// Run flushes whenever new writes arrive and on every interval tick, until
// ctx is cancelled. A final flush is attempted on the way out.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.flushWithTimeout(context.WithoutCancel(ctx))
			return
		case <-s.wake:
		case <-ticker.C:
		}
		s.flushWithTimeout(ctx)
	}
}

func (s *Syncer) flushWithTimeout(parent context.Context) {
	if s.Pending() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(parent, s.opts.Timeout)
	defer cancel()
	if err := s.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("remote sync failed, will retry", zap.Int("pending", s.Pending()), zap.Error(err))
	}
}

func (s *Syncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Remote:    s.remote.Name(),
		Pending:   len(s.queue),
		Dropped:   s.dropped,
		LastFlush: s.lastFlush,
		LastError: s.lastErr,
	}
}

// Load replaces repo with the remote table when the remote has rows.
// It returns how many rows were loaded.
func Load[T store.Entity](ctx context.Context, remote RowStore, repo *store.Repository[T]) (int, error) {
	var rows []T
	if err := remote.SelectAll(ctx, repo.Name(), &rows); err != nil {
		return 0, fmt.Errorf("load %s: %w", repo.Name(), err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	repo.Replace(ctx, rows)
	return len(rows), nil
}

// Push writes every record of repo to the remote, bypassing the queue.
// It is used to re-seed an empty or rebuilt remote from local state.
func Push[T store.Entity](ctx context.Context, remote RowStore, repo *store.Repository[T]) (int, error) {
	items := repo.List()
	for _, it := range items {
		if err := remote.Upsert(ctx, repo.Name(), it.EntityID(), it); err != nil {
			return 0, fmt.Errorf("push %s: %w", repo.Name(), err)
		}
	}
	return len(items), nil
}

// Noop is the row store used when no remote is configured.
type Noop struct{}

func (Noop) Name() string { return "none" }
func (Noop) SelectAll(context.Context, string, any) error { return nil }
func (Noop) Upsert(context.Context, string, string, any) error { return nil }
func (Noop) Delete(context.Context, string, string) error { return nil }

// MemoryStore is an in-process RowStore, used by tests and the CLI dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
	order  map[string][]string
	// Fail, when set, is returned by every write.
	Fail error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string]map[string][]byte{}, order: map[string][]string{}}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) SelectAll(_ context.Context, table string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	ids := m.order[table]
	docs := make([]json.RawMessage, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		docs = append(docs, rows[ids[i]])
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func (m *MemoryStore) Upsert(_ context.Context, table, id string, row any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	doc, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if m.tables[table] == nil {
		m.tables[table] = map[string][]byte{}
	}
	if _, ok := m.tables[table][id]; !ok {
		m.order[table] = append(m.order[table], id)
	}
	m.tables[table][id] = doc
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	delete(m.tables[table], id)
	ids := m.order[table]
	for i, v := range ids {
		if v == id {
			m.order[table] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Has reports whether table holds id.
func (m *MemoryStore) Has(table, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tables[table][id]
	return ok
}

func (m *MemoryStore) SetFail(err error) {
	m.mu.Lock()
	m.Fail = err
	m.mu.Unlock()
}
