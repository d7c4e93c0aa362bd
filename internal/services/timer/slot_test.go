package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/dependencies/mocks"
	"github.com/mcoot/quizgame/internal/testutil"
)

func newSlot() (*Slot, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return NewSlot("test", clk, testutil.NopLogger()), clk
}

func TestSlotFiresOnEachTick(t *testing.T) {
	slot, clk := newSlot()
	var calls atomic.Int32

	slot.Start(context.Background(), time.Second, false, func(ctx context.Context) bool {
		calls.Add(1)
		return true
	})
	require.True(t, slot.Running())

	clk.Tick()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	clk.Tick()
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	slot.Stop()
	assert.False(t, slot.Running())
}

func TestSlotImmediateRunsBeforeFirstTick(t *testing.T) {
	slot, _ := newSlot()
	called := make(chan struct{}, 1)

	slot.Start(context.Background(), time.Second, true, func(ctx context.Context) bool {
		called <- struct{}{}
		return true
	})
	defer slot.Stop()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("immediate callback did not run")
	}
}

func TestSlotStartReplacesPreviousInterval(t *testing.T) {
	slot, clk := newSlot()
	var first, second atomic.Int32

	slot.Start(context.Background(), time.Second, false, func(ctx context.Context) bool {
		first.Add(1)
		return true
	})
	slot.Start(context.Background(), time.Second, false, func(ctx context.Context) bool {
		second.Add(1)
		return true
	})
	defer slot.Stop()

	assert.Equal(t, 1, clk.ActiveTickers())

	clk.Tick()
	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestSlotStopsWhenCallbackReturnsFalse(t *testing.T) {
	slot, clk := newSlot()
	var calls atomic.Int32

	slot.Start(context.Background(), time.Second, false, func(ctx context.Context) bool {
		calls.Add(1)
		return false
	})

	clk.Tick()
	assert.Eventually(t, func() bool { return !slot.Running() }, time.Second, time.Millisecond)

	clk.Tick()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, clk.ActiveTickers())
}

func TestSlotNoCallbackAfterStop(t *testing.T) {
	slot, clk := newSlot()
	var calls atomic.Int32

	slot.Start(context.Background(), time.Second, false, func(ctx context.Context) bool {
		calls.Add(1)
		return true
	})
	slot.Stop()

	clk.Tick()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSlotStopsWithParentContext(t *testing.T) {
	slot, _ := newSlot()
	ctx, cancel := context.WithCancel(context.Background())

	slot.Start(ctx, time.Second, false, func(ctx context.Context) bool { return true })
	cancel()

	assert.Eventually(t, func() bool { return !slot.Running() }, time.Second, time.Millisecond)
}
