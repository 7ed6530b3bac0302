package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cirrus/pkg/core"
)

func TestBroker_FanOut(t *testing.T) {
	b := core.NewBroker(0, quiet)
	ctx := t.Context()
	s1 := b.Subscribe(ctx)
	s2 := b.Subscribe(ctx)
	assert.Equal(t, 2, b.Subscribers())

	b.Publish(core.Event{Type: core.EventCreate, ID: "a"})
	for _, ch := range []<-chan core.Event{s1, s2} {
		select {
		case e := <-ch:
			assert.Equal(t, "a", e.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBroker_SlowSubscriberNeverBlocks(t *testing.T) {
	b := core.NewBroker(2, quiet)
	ch := b.Subscribe(t.Context())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(core.Event{Type: core.EventModify})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, 2)
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	b := core.NewBroker(0, quiet)
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	assert.Equal(t, 0, b.Subscribers())
	b.Publish(core.Event{Type: core.EventSync})
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "CREATE a", core.Event{Type: core.EventCreate, ID: "a"}.String())
	assert.Equal(t, "SYNC (3 notes)", core.Event{Type: core.EventSync, Detail: "3 notes"}.String())
	assert.Equal(t, "PUSH_FAILED a (boom)", core.Event{Type: core.EventPushFailed, ID: "a", Detail: "boom"}.String())
	assert.Equal(t, "STATE", core.Event{Type: core.EventState}.String())
}
