// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"context"

	"github.com/luxfi/gateway"
)

var _ EventSource = (*FeedSource)(nil)

// EventSource streams the SentEvents of a source gateway. The channel is
// closed when the stream ends or ctx is done.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan gateway.SentEvent, error)
}

// FeedSource reads events from a gateway running in the same process.
type FeedSource struct {
	feed   *gateway.EventFeed
	buffer int
}

func NewFeedSource(feed *gateway.EventFeed, buffer int) *FeedSource {
	return &FeedSource{
		feed:   feed,
		buffer: buffer,
	}
}

func (s *FeedSource) Subscribe(ctx context.Context) (<-chan gateway.SentEvent, error) {
	events, unsubscribe := s.feed.Subscribe(s.buffer)
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return events, nil
}
