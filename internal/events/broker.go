// Package events fans ledger changes out to in-process subscribers.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// Change describes one committed mutation of a ledger table.
type Change struct {
	Seq      uint            `json:"seq"`
	Table    string          `json:"table"`
	Op       models.ChangeOp `json:"op"`
	RecordID uint            `json:"record_id"`
	At       time.Time       `json:"at"`
}

// FromRecord converts a journal row into a Change.
func FromRecord(r models.ChangeRecord) Change {
	return Change{Seq: r.Seq, Table: r.Table, Op: r.Op, RecordID: r.RecordID, At: r.CreatedAt}
}

// DefaultBuffer is the per-subscriber channel capacity used when none is given.
const DefaultBuffer = 64

// Broker is an in-process publish/subscribe hub for ledger changes.
// A nil *Broker is valid and drops everything published to it.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

// NewBroker creates a broker whose subscriptions buffer up to buffer changes.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{subs: make(map[uint64]*Subscription), buffer: buffer}
}

// Subscription receives the changes for the tables it was created with.
type Subscription struct {
	id      uint64
	ch      chan Change
	tables  map[string]struct{}
	broker  *Broker
	once    sync.Once
	dropped atomic.Uint64
}

// Subscribe registers a subscriber. With no tables every change is delivered.
// Subscribing to a closed broker returns a subscription whose channel is
// already closed.
func (b *Broker) Subscribe(tables ...string) *Subscription {
	sub := &Subscription{ch: make(chan Change, b.buffer), broker: b}
	if len(tables) > 0 {
		sub.tables = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			sub.tables[t] = struct{}{}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers changes in order to every matching subscriber. It never
// blocks: a subscriber with a full buffer misses the change and can recover
// it from the journal by Seq.
func (b *Broker) Publish(changes ...Change) {
	if b == nil || len(changes) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		for _, c := range changes {
			if !sub.wants(c.Table) {
				continue
			}
			select {
			case sub.ch <- c:
			default:
				sub.dropped.Add(1)
				logger.Get().Warnw("dropping change for slow subscriber",
					"subscriber", sub.id, "seq", c.Seq, "table", c.Table)
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Events returns the delivery channel. It is closed by Close.
func (s *Subscription) Events() <-chan Change {
	return s.ch
}

// Dropped returns how many changes were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.broker.remove(s)
}

func (s *Subscription) wants(table string) bool {
	if s.tables == nil {
		return true
	}
	_, ok := s.tables[table]
	return ok
}
