package sched

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait when a second stop signal arrives.
var ErrForcedExit = errors.New("forced exit")

// ProducerError tells which runnable failed.
type ProducerError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *ProducerError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

type exit struct {
	name string
	err  error
}

// Runner starts byte producers in their own goroutines and collects how
// they stopped.
type Runner struct {
	Context context.Context
	Runners []Runnable

	exits   chan exit
	forced  chan struct{}
	running int
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		exits:   make(chan exit),
		forced:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on Ctrl-C or SIGTERM. A second signal
// makes Wait give up on the runnables still stopping.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go r.watchSignals(sigCh, cancel)
	return r
}

func (r *Runner) watchSignals(sigCh <-chan os.Signal, cancel func()) {
	glog.Infof("%v: stopping", <-sigCh)
	cancel()
	glog.Errorf("%v again, force exit", <-sigCh)
	close(r.forced)
}

// Go starts runnables with the runner's context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith starts runnables with a specified context. Unnamed runnables are
// named after their position.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(len(r.Runners))
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		r.running++
		glog.V(4).Infof("start %s", name)
		go func(runner Runnable, name string) {
			err := runner.Run(ctx)
			glog.V(4).Infof("%s stopped: %v", name, err)
			r.exits <- exit{name: name, err: err}
		}(runner, name)
	}
	return r
}

// Wait blocks until every started runnable stops. Failures are reported as
// ProducerErrors; cancellation is not a failure.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for ; r.running > 0; r.running-- {
		select {
		case <-r.forced:
			return ErrForcedExit
		case e := <-r.exits:
			if e.err != nil && e.err != context.Canceled {
				errs.Add(&ProducerError{Name: e.name, Err: e.err})
			}
		}
	}
	return errs.Aggregate()
}

// RunClosable runs fn, a blocking call which only stops once closer is
// closed, e.g. http.Server.Serve. closer is closed exactly once, when ctx
// ends or after fn returns on its own.
func RunClosable(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	}
}
