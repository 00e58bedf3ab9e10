package password

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	p := NewPool(workers)

	var (
		running atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Do(context.Background(), func() {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Positive(t, peak.Load())
}

func TestNewPool_ClampsToOne(t *testing.T) {
	p := NewPool(0)
	ran := false
	require.NoError(t, p.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestPool_CancelledContextSkipsWork(t *testing.T) {
	p := NewPool(1)
	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = p.Do(context.Background(), func() {
			close(started)
			<-block
		})
	}()
	<-started
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := p.Do(ctx, func() { ran = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
