// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"sync"

	"github.com/luxfi/gateway"
	"go.uber.org/zap"
)

const DefaultEventHistory = 4096

// EventLog keeps the most recent SentEvents of a gateway so stream clients
// can resume from a nonce, and fans live events out to them. A client that
// falls behind by more than its buffer is disconnected and expected to
// resume.
type EventLog struct {
	logger *zap.Logger

	lock    sync.Mutex
	history []gateway.SentEvent
	// index of the oldest event once history is full
	start  int
	size   int
	nextID uint64
	subs   map[uint64]chan gateway.SentEvent
	closed bool
}

func NewEventLog(logger *zap.Logger, size int) *EventLog {
	if size <= 0 {
		size = DefaultEventHistory
	}
	return &EventLog{
		logger:  logger,
		history: make([]gateway.SentEvent, 0, size),
		size:    size,
		subs:    make(map[uint64]chan gateway.SentEvent),
	}
}

// Run records the events of feed until ctx is done or the feed closes.
func (l *EventLog) Run(ctx context.Context, feed *gateway.EventFeed) {
	events, unsubscribe := feed.Subscribe(gateway.DefaultEventBuffer)
	defer unsubscribe()
	defer l.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.Append(ev)
		}
	}
}

// Append records ev and forwards it to subscribers.
func (l *EventLog) Append(ev gateway.SentEvent) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if len(l.history) < l.size {
		l.history = append(l.history, ev)
	} else {
		l.history[l.start] = ev
		l.start = (l.start + 1) % l.size
	}

	for id, ch := range l.subs {
		select {
		case ch <- ev:
		default:
			l.logger.Warn(
				"Disconnecting lagging event subscriber",
				zap.Uint64("subscriber", id),
				zap.Uint64("nonce", ev.Nonce),
			)
			delete(l.subs, id)
			close(ch)
		}
	}
}

// Subscribe returns the recorded events with a nonce of at least from and
// a channel carrying every later event.
func (l *EventLog) Subscribe(from uint64, buffer int) ([]gateway.SentEvent, <-chan gateway.SentEvent, func()) {
	if buffer <= 0 {
		buffer = gateway.DefaultEventBuffer
	}
	ch := make(chan gateway.SentEvent, buffer)

	l.lock.Lock()
	defer l.lock.Unlock()

	var backlog []gateway.SentEvent
	for i := range l.history {
		ev := l.history[(l.start+i)%len(l.history)]
		if ev.Nonce >= from {
			backlog = append(backlog, ev)
		}
	}

	if l.closed {
		close(ch)
		return backlog, ch, func() {}
	}
	id := l.nextID
	l.nextID++
	l.subs[id] = ch

	var once sync.Once
	return backlog, ch, func() {
		once.Do(func() {
			l.lock.Lock()
			defer l.lock.Unlock()
			if sub, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(sub)
			}
		})
	}
}

func (l *EventLog) closeAll() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
