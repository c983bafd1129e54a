package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoReportsResultOnOwnChannel(t *testing.T) {
	p := NewPool(2, 4)
	defer p.Close()

	boom := errors.New("deliver failed")
	errCh := p.Go(func() error { return boom })

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	_, open := <-errCh
	assert.False(t, open)
}

func TestGoRecoversPanic(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Close()

	err := <-p.Go(func() error { panic("bad invitation") })
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "bad invitation", panicErr.Value)

	// worker 仍然可用
	assert.NoError(t, <-p.Go(func() error { return nil }))
}

func TestSubmitFallsBackToSyncWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-block
	})
	<-started
	p.Submit(func() {}) // 占满缓冲区

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	assert.True(t, ran.Load())
	close(block)
}

func TestSubmitAfterCloseRunsSynchronously(t *testing.T) {
	p := NewPool(1, 4)
	p.Close()
	p.Close()

	var ran atomic.Bool
	assert.NotPanics(t, func() {
		p.Submit(func() { ran.Store(true) })
	})
	assert.True(t, ran.Load())

	boom := errors.New("deliver failed")
	assert.ErrorIs(t, <-p.Go(func() error { return boom }), boom)
}
