// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventFeed(t *testing.T) {
	require := require.New(t)

	dropped := 0
	feed := NewEventFeed(zap.NewNop())
	feed.dropped = func() { dropped++ }

	fast, unsubscribeFast := feed.Subscribe(2)
	slow, unsubscribeSlow := feed.Subscribe(1)
	defer unsubscribeSlow()

	feed.publish(SentEvent{Key: "a", Nonce: 0})
	feed.publish(SentEvent{Key: "b", Nonce: 1})

	require.Equal("a", (<-fast).Key)
	require.Equal("b", (<-fast).Key)
	require.Equal("a", (<-slow).Key)
	require.Equal(1, dropped)

	unsubscribeFast()
	unsubscribeFast()
	_, ok := <-fast
	require.False(ok)

	feed.Close()
	_, ok = <-slow
	require.False(ok)

	late, _ := feed.Subscribe(1)
	_, ok = <-late
	require.False(ok)
}
