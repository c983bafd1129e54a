package mq

import (
	"context"
	"testing"

	"mentor_sync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsByMode(t *testing.T) {
	ch := New(config.KafkaConfig{MessageMode: "channel"})
	_, ok := ch.(*ChannelPublisher)
	assert.True(t, ok)

	k := New(config.KafkaConfig{MessageMode: "kafka", HostPort: "127.0.0.1:9092", ChangeTopic: "t"})
	_, ok = k.(*KafkaPublisher)
	assert.True(t, ok)
	assert.NoError(t, k.Close())
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, ChangeEvent{Collection: "messages", DocID: "1"}))
	require.NoError(t, p.Publish(ctx, ChangeEvent{Collection: "messages", DocID: "2"}))

	ev := <-p.Events()
	assert.Equal(t, "1", ev.DocID)

	require.NoError(t, p.Close())
	require.NoError(t, p.Publish(ctx, ChangeEvent{DocID: "3"}))
	_, open := <-p.Events()
	assert.False(t, open)
}
