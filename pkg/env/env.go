package env

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/console"
	"github.com/robotalks/ucl.go/pkg/device"
	"github.com/robotalks/ucl.go/pkg/frame"
	"github.com/robotalks/ucl.go/pkg/link/mqtt"
	"github.com/robotalks/ucl.go/pkg/link/websocket"
	"github.com/robotalks/ucl.go/pkg/sched"
)

// Env is a fully wired command line with its byte sources and sinks.
type Env struct {
	Config *Config
	Device *device.Device
	LED    *device.SimLED
	Heater *device.SimHeater

	Port      *console.Port
	Sinks     console.Sinks
	Input     *frame.Receiver
	MQTT      *mqtt.Link
	Websocket *websocket.Server

	closers []io.Closer
}

// Validate checks the options not covered by the device itself.
func (c *Config) Validate() error {
	if c.TxRetries < 0 {
		return fmt.Errorf("tx-retries must not be negative")
	}
	if c.MQTTBrokerURL != "" && c.DeviceID == "" {
		return fmt.Errorf("device id is required for MQTT")
	}
	return nil
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.MQTTBrokerURL != "" && c.DeviceID == "" {
		c.DeviceID = MachineID()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	env := &Env{Config: c, LED: &device.SimLED{}, Heater: &device.SimHeater{}}
	sink := console.EmitFunc(env.emit)
	dev, err := device.New(c.DeviceConfig(), sink, device.DefaultEntries(env.LED, env.Heater, sink)...)
	if err != nil {
		return nil, fmt.Errorf("create device error: %v", err)
	}
	env.Device = dev

	if err := env.openInput(); err != nil {
		env.Close()
		return nil, err
	}
	if c.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("create MQTT queue error: %v", err)
		}
		env.MQTT = mqtt.NewLink(q, c.DeviceID, dev)
		env.Sinks = append(env.Sinks, env.MQTT)
	}
	if c.WebsocketAddr != "" {
		env.Websocket = websocket.NewServer(c.WebsocketAddr, dev)
		env.Sinks = append(env.Sinks, env.Websocket)
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

func (e *Env) openInput() error {
	var (
		r io.Reader
		w io.Writer = os.Stdout
	)
	switch e.Config.Input {
	case "":
	case "-":
		r = os.Stdin
	default:
		f, err := os.OpenFile(e.Config.Input, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("open input error: %v", err)
		}
		e.closers = append(e.closers, f)
		r, w = f, f
	}
	e.Port = console.NewPort(w)
	e.Port.Retries = e.Config.TxRetries
	e.Sinks = append(e.Sinks, e.Port)
	if r != nil {
		e.Input = frame.NewReceiver("input", r, e.Device.Assembler)
	}
	return nil
}

func (e *Env) emit(msg string) {
	e.Sinks.Emit(msg)
}

// AddToLoop adds the consumer and all byte sources to loop.
func (e *Env) AddToLoop(loop *sched.Loop) {
	loop.Interval = e.Config.Interval
	loop.Add(&device.Consumer{Device: e.Device})
	if e.Input != nil {
		loop.AddRunnable(e.Input)
	}
	if e.MQTT != nil {
		loop.AddRunnable(e.MQTT)
	}
	if e.Websocket != nil {
		loop.AddRunnable(e.Websocket)
	}
	e.Device.OnDrop(func(r frame.DropReason) {
		glog.V(2).Infof("frame dropped: %s", r)
	})
}

// Close releases opened inputs.
func (e *Env) Close() error {
	var errs sched.AggregatedError
	for _, c := range e.closers {
		errs.Add(c.Close())
	}
	e.closers = nil
	return errs.Aggregate()
}
