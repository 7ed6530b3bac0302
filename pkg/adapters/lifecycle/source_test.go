package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cirrus/pkg/adapters/lifecycle"
	"github.com/aretw0/cirrus/pkg/core"
)

func TestSource_Bridges(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	in <- core.Event{Type: core.EventState, Detail: "connected"}
	in <- core.Event{Type: core.EventDelete, ID: "a"}
	close(in)

	src := lifecycle.NewSource(in, nil)
	require.NoError(t, src.Start(context.Background()))

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"CREATE a", "STATE (connected)", "DELETE a"}, got)
}

func TestSource_Filter(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	in <- core.Event{Type: core.EventSync, Detail: "2 notes"}
	in <- core.Event{Type: core.EventPushFailed, ID: "a", Detail: "boom"}
	close(in)

	src := lifecycle.NewSource(in, lifecycle.Only(core.EventSync, core.EventPushFailed))
	require.NoError(t, src.Start(context.Background()))

	var got []core.EventType
	for e := range src.Events() {
		got = append(got, e.(core.Event).Type)
	}
	assert.Equal(t, []core.EventType{core.EventSync, core.EventPushFailed}, got)
}

func TestSource_StopsOnCancel(t *testing.T) {
	in := make(chan core.Event)
	ctx, cancel := context.WithCancel(context.Background())

	src := lifecycle.NewSource(in, nil)
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close")
	}
}
