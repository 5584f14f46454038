package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	h := NewHub()
	a, cleanupA := h.Subscribe("compliance")
	defer cleanupA()
	b, cleanupB := h.Subscribe("other")
	defer cleanupB()

	h.Publish("compliance", Event{Event: "compliance.summary", Data: 1})

	select {
	case ev := <-a:
		assert.Equal(t, "compliance", ev.Topic)
		assert.Equal(t, "compliance.summary", ev.Event)
	default:
		t.Fatal("expected event on subscribed topic")
	}
	assert.Len(t, b, 0)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("compliance")
	require.Equal(t, 1, h.SubscriberCount("compliance"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, h.SubscriberCount("compliance"))
	assert.Equal(t, 0, h.TotalSubscribers())

	_, open := <-ch
	assert.False(t, open)
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("compliance")
	defer cleanup()

	for i := 0; i < 50; i++ {
		h.Publish("compliance", Event{Event: "tick"})
	}
}
