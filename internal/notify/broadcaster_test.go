package notify

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster(4)
	one, two := b.Subscribe(), b.Subscribe()
	defer one.Close()
	defer two.Close()
	require.Equal(t, 2, b.Count())

	n := types.Notification{Signal: types.SignalChangedMode, Mode: "home"}
	require.NoError(t, b.Deliver(context.Background(), n))

	assert.Equal(t, n, <-one.C)
	assert.Equal(t, n, <-two.C)
}

func TestBroadcasterSlowSubscriberDrops(t *testing.T) {
	b := NewBroadcaster(1)
	sub := b.Subscribe()
	defer sub.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Deliver(context.Background(), types.Notification{Signal: types.SignalResumeMode}))
	}

	assert.Equal(t, uint64(2), sub.Dropped())
	assert.Len(t, sub.C, 1)
}

func TestSubscriptionClose(t *testing.T) {
	b := NewBroadcaster(1)
	sub := b.Subscribe()

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, b.Count())

	_, open := <-sub.C
	assert.False(t, open)
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster(1)
	sub := b.Subscribe()

	b.Close()
	_, open := <-sub.C
	assert.False(t, open)

	late := b.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
	late.Close()
}
