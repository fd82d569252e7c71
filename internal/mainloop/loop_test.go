package mainloop

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(slog.New(slog.DiscardHandler), 4)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

func TestRunsTasksInOrder(t *testing.T) {
	l := startLoop(t)

	var mu sync.Mutex
	var got []int
	for i := range 10 {
		require.True(t, l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, l.Do(context.Background(), func() {}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestSingleGoroutine(t *testing.T) {
	l := startLoop(t)

	active := 0
	overlap := false
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() {
				active++
				if active > 1 {
					overlap = true
				}
				time.Sleep(time.Millisecond)
				active--
			})
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestPostAfterStop(t *testing.T) {
	l := New(slog.New(slog.DiscardHandler), 1)
	done := make(chan error)
	go func() { done <- l.Run(context.Background()) }()

	l.Stop()
	require.NoError(t, <-done)

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
}

func TestRunReturnsContextError(t *testing.T) {
	l := New(slog.New(slog.DiscardHandler), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.False(t, l.Post(func() {}))
}
