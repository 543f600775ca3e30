// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"sync"

	"go.uber.org/zap"
)

const DefaultEventBuffer = 256

// SentEvent is published after every successful send.
type SentEvent struct {
	Key                string  `json:"key"`
	Nonce              uint64  `json:"nonce"`
	DestinationChainID ChainID `json:"dstChainID"`
	Message            []byte  `json:"message"`
}

// EventFeed fans SentEvents out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type EventFeed struct {
	logger  *zap.Logger
	lock    sync.Mutex
	nextID  uint64
	subs    map[uint64]chan SentEvent
	closed  bool
	dropped func()
}

func NewEventFeed(logger *zap.Logger) *EventFeed {
	return &EventFeed{
		logger:  logger,
		subs:    make(map[uint64]chan SentEvent),
		dropped: func() {},
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// function unsubscribes and closes the channel.
func (f *EventFeed) Subscribe(buffer int) (<-chan SentEvent, func()) {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	ch := make(chan SentEvent, buffer)

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.lock.Lock()
			defer f.lock.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

func (f *EventFeed) publish(ev SentEvent) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			f.dropped()
			f.logger.Warn(
				"Dropping sent event for slow subscriber",
				zap.Uint64("subscriber", id),
				zap.String("key", ev.Key),
				zap.Uint64("nonce", ev.Nonce),
			)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *EventFeed) Subscribers() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.subs)
}

// Close closes every subscription. Later subscriptions are closed at once.
func (f *EventFeed) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
