package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilProducerDropsEverything(t *testing.T) {
	var p *Producer

	err := p.PublishEvent(context.Background(), "1", map[string]interface{}{
		"type": "user_registered",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishRejectsUnmarshalablePayload(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "worklog_events")
	defer p.Close()

	err := p.PublishEvent(context.Background(), "1", map[string]interface{}{
		"bad": make(chan int),
	})
	require.Error(t, err)
}
