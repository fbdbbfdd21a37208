package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, errors.New("a"))
	require.Equal(t, "a", errs.Aggregate().Error())
	errs.Add(errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Error())
}

func TestRunnerWait(t *testing.T) {
	errFail := errors.New("fail")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return nil }),
		NamedRun("failing", RunFunc(func(context.Context) error { return errFail })),
		RunFunc(func(context.Context) error { return context.Canceled }),
	)
	require.Len(t, r.Runners, 3)
	err := r.Wait()
	require.EqualError(t, err, "failing: fail")
	perr := err.(*AggregatedError).Errors[0].(*ProducerError)
	require.Equal(t, "failing", perr.Name)
	require.Equal(t, errFail, perr.Err)
}

func TestRunnerWaitNothing(t *testing.T) {
	require.NoError(t, NewRunner().Wait())
}

// serverCloser unblocks its serve loop on Close, like http.Server.
type serverCloser struct {
	closes  int32
	closeCh chan struct{}
}

func newServerCloser() *serverCloser {
	return &serverCloser{closeCh: make(chan struct{})}
}

func (c *serverCloser) Close() error {
	if atomic.AddInt32(&c.closes, 1) == 1 {
		close(c.closeCh)
	}
	return nil
}

func (c *serverCloser) serve() error {
	<-c.closeCh
	return errors.New("server closed")
}

func TestRunClosableCanceled(t *testing.T) {
	c := newServerCloser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, RunClosable(ctx, c, c.serve))
	require.Equal(t, int32(1), atomic.LoadInt32(&c.closes))
}

func TestRunClosableReturns(t *testing.T) {
	c := newServerCloser()
	errIO := errors.New("io")
	require.Equal(t, errIO, RunClosable(context.Background(), c, func() error { return errIO }))
	require.Equal(t, int32(1), atomic.LoadInt32(&c.closes))
}

func TestLoopTriggerNext(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	iterCh := make(chan struct{}, 4)
	l.AddController(ControlFunc(func(context.Context) error {
		iterCh <- struct{}{}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- l.Run(ctx) }()

	l.TriggerNext()
	select {
	case <-iterCh:
	case <-time.After(time.Second):
		t.Fatal("loop not woken")
	}
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
}

func TestLoopTriggerNextNeverBlocks(t *testing.T) {
	l := NewLoop()
	for i := 0; i < 10; i++ {
		l.TriggerNext()
	}
}

func TestLoopInterval(t *testing.T) {
	l := &Loop{Interval: time.Millisecond}
	var count int32
	l.AddController(ControlFunc(func(context.Context) error {
		atomic.AddInt32(&count, 1)
		return errors.New("logged only")
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, l.Run(ctx))
	require.True(t, atomic.LoadInt32(&count) > 1)
}

type adder struct {
	startCh chan struct{}
}

func (a *adder) AddToLoop(l *Loop) {
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		close(a.startCh)
		<-ctx.Done()
		return ctx.Err()
	}))
}

func TestLoopStartsRunnables(t *testing.T) {
	a := &adder{startCh: make(chan struct{})}
	l := NewLoop().Add(a)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- l.Run(ctx) }()
	select {
	case <-a.startCh:
	case <-time.After(time.Second):
		t.Fatal("runnable not started")
	}
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
}

func TestLoopProducerFailure(t *testing.T) {
	errFail := errors.New("port closed")
	l := NewLoop().AddRunnable(RunFunc(func(context.Context) error { return errFail }))
	require.EqualError(t, l.Run(context.Background()), "0: port closed")
}

func TestPostRun(t *testing.T) {
	l := NewLoop()
	var count int
	l.PostRun(ControlFunc(func(context.Context) error {
		count++
		return nil
	}))
	l.RunIteration(context.Background())
	l.RunIteration(context.Background())
	require.Equal(t, 1, count)
}
