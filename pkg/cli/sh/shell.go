// Package sh provides an interactive shell driving a local command line.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ucl.go/pkg/console"
	"github.com/robotalks/ucl.go/pkg/device"
	"github.com/robotalks/ucl.go/pkg/env"
	"github.com/robotalks/ucl.go/pkg/frame"
	"github.com/robotalks/ucl.go/pkg/sched"
)

// DefaultTimeout bounds the wait for a request outcome.
const DefaultTimeout = time.Second

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration

	Shell    *ishell.Shell
	Env      *env.Env
	Recorder *console.Recorder

	feeder *frame.Assembler
	cancel func()
	doneCh chan error
}

const (
	shellKey = "$shell"
	prompt   = "ucl > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&SendCmd,
		&RawCmd,
		&StatsCmd,
		&PoolCmd,
		&LEDCmd,
		&HeaterCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a shell over e. Diagnostics are recorded for display.
func New(e *env.Env) (*Shell, error) {
	feeder, err := e.Device.NewAssembler()
	if err != nil {
		return nil, err
	}
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     DefaultTimeout,
		Shell:       ishell.New(),
		Env:         e,
		Recorder:    &console.Recorder{},
		feeder:      feeder,
	}
	e.Sinks = append(e.Sinks, s.Recorder)
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Start runs the device loop in background.
func (s *Shell) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	loop := sched.NewLoop()
	s.Env.AddToLoop(loop)
	s.cancel, s.doneCh = cancel, make(chan error, 1)
	go func() {
		s.doneCh <- loop.Run(ctx)
	}()
}

// Stop stops the device loop.
func (s *Shell) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	if err := <-s.doneCh; err != context.Canceled {
		return err
	}
	return nil
}

// Exchange feeds data as if received on the line and returns the
// diagnostics emitted while handling it.
func (s *Shell) Exchange(data []byte) []string {
	s.Recorder.Take()
	before := s.Env.Device.Stats()
	for _, b := range data {
		s.feeder.Feed(b)
	}
	deadline := time.Now().Add(s.Timeout)
	for time.Now().Before(deadline) {
		if settled(before, s.Env.Device.Stats()) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	return s.Recorder.Take()
}

// settled tells whether the request fed after before reached an outcome.
func settled(before, after device.Stats) bool {
	fb, fa := before.Frame, after.Frame
	return after.Processed > before.Processed ||
		after.NoResults > before.NoResults ||
		fa.Rejected > fb.Rejected ||
		fa.Overflows > fb.Overflows ||
		fa.Dropped > fb.Dropped ||
		fa.AllocFailures > fb.AllocFailures
}

// Print prints v as JSON when requested, or with format otherwise.
func (s *Shell) Print(c *ishell.Context, v interface{}, format string, args ...interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Printf(format, args...)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	s.Start()
	defer s.Stop()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := env.NewConfig()
	// stdin belongs to the shell.
	if conf.Input == "-" {
		conf.Input = ""
	}
	e := conf.MustNewEnv()
	defer e.Close()
	s, err := New(e)
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
