package sched

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the idle polling period of the main loop.
const DefaultInterval = 100 * time.Millisecond

// Loop is the cooperative main context. Controllers run sequentially, once
// per iteration. An iteration happens on every tick of Interval, or
// immediately after TriggerNext.
type Loop struct {
	Interval time.Duration

	controllers []Controller
	runners     []Runnable

	postHooks []Controller
	lock      sync.Mutex

	wakeUpCh chan struct{}
	once     sync.Once
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers. A controller which is also a
// Runnable gets its Run started alongside the loop.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background producers started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// PostRun schedules hooks to run once at the end of the next iteration.
func (l *Loop) PostRun(hooks ...Controller) {
	l.lock.Lock()
	l.postHooks = append(l.postHooks, hooks...)
	l.lock.Unlock()
}

// TriggerNext wakes the loop for an immediate iteration. It never blocks and
// is safe to call from any goroutine.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeCh() <- struct{}{}:
	default:
	}
}

func (l *Loop) wakeCh() chan struct{} {
	l.once.Do(func() {
		l.wakeUpCh = make(chan struct{}, 1)
	})
	return l.wakeUpCh
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	wakeUpCh := l.wakeCh()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := NewRunnerWith(runCtx).Go(l.runners...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Wait()
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cancel()
			if errCh != nil {
				if err := <-errCh; err != nil {
					glog.Errorf("loop runners: %v", err)
				}
			}
			return ctx.Err()
		case err := <-errCh:
			// all producers are gone.
			if err != nil {
				return err
			}
			errCh = nil
		case <-ticker.C:
			l.RunIteration(ctx)
		case <-wakeUpCh:
			l.RunIteration(ctx)
		}
	}
}

// RunIteration executes every controller once, followed by the pending
// post-run hooks.
func (l *Loop) RunIteration(ctx context.Context) {
	runControllers(ctx, l.controllers)
	l.lock.Lock()
	hooks := l.postHooks
	l.postHooks = nil
	l.lock.Unlock()
	runControllers(ctx, hooks)
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

func runControllers(ctx context.Context, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(ctx); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}
