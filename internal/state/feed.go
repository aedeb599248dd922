package state

import (
	"sync"
	"time"

	"github.com/futig/notes-backend/internal/entity"
)

const subscriberBuffer = 16

// Feed is a bounded log of live updates with fan-out to subscribers.
// Slow subscribers miss events instead of blocking publishers.
type Feed struct {
	mu          sync.Mutex
	seq         int64
	limit       int
	events      []entity.LiveUpdate
	subscribers map[chan entity.LiveUpdate]struct{}
	closed      bool
}

func newFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 100
	}
	return &Feed{
		limit:       limit,
		subscribers: make(map[chan entity.LiveUpdate]struct{}),
	}
}

func (f *Feed) Publish(kind entity.UpdateKind, message string, data any) entity.LiveUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	u := entity.LiveUpdate{
		Seq:       f.seq,
		Kind:      kind,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	f.events = append(f.events, u)
	if len(f.events) > f.limit {
		f.events = f.events[len(f.events)-f.limit:]
	}

	for ch := range f.subscribers {
		select {
		case ch <- u:
		default:
		}
	}

	return u
}

// Since returns retained events with Seq greater than seq.
func (f *Feed) Since(seq int64) []entity.LiveUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.LiveUpdate, 0, len(f.events))
	for _, u := range f.events {
		if u.Seq > seq {
			out = append(out, u)
		}
	}
	return out
}

// Subscribe returns a channel of future events and a func to stop receiving.
// The channel is closed when the session expires.
func (f *Feed) Subscribe() (<-chan entity.LiveUpdate, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan entity.LiveUpdate, subscriberBuffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	f.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subscribers[ch]; ok {
				delete(f.subscribers, ch)
				close(ch)
			}
		})
	}
}

func (f *Feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for ch := range f.subscribers {
		delete(f.subscribers, ch)
		close(ch)
	}
}
