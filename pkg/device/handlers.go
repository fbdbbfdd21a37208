package device

import (
	"context"
	"fmt"

	"github.com/robotalks/ucl.go/pkg/command"
	"github.com/robotalks/ucl.go/pkg/console"
)

// Command names of the default table.
const (
	CmdLightOn   = "LightOn"
	CmdGetHeater = "GetHeater"
)

// MsgHeaterValue reports the heater reading.
const MsgHeaterValue = "Heater: %s\n"

// LED is the light driven by LightOn. The value is the raw parameter text.
type LED interface {
	SetLED(value string) error
}

// Heater is read by GetHeater.
type Heater interface {
	HeaterValue() (string, error)
}

// LightOn handles the LightOn command.
type LightOn struct {
	LED  LED
	Sink console.Sink
}

// HandleCommand implements command.Handler.
func (h *LightOn) HandleCommand(ctx context.Context, res *command.Result) error {
	if res == nil {
		h.Sink.Emit(command.MsgNullContent)
		return ErrNullContent
	}
	h.Sink.Emit(fmt.Sprintf(command.MsgFirstCommand, res.Command()))
	if err := h.LED.SetLED(res.Param()); err != nil {
		return err
	}
	h.Sink.Emit(command.MsgProcessed)
	return nil
}

// GetHeater handles the GetHeater command.
type GetHeater struct {
	Heater Heater
	Sink   console.Sink
}

// HandleCommand implements command.Handler.
func (h *GetHeater) HandleCommand(ctx context.Context, res *command.Result) error {
	if res == nil {
		h.Sink.Emit(command.MsgNullContent)
		return ErrNullContent
	}
	h.Sink.Emit(fmt.Sprintf(command.MsgSecondCmd, res.Command()))
	val, err := h.Heater.HeaterValue()
	if err != nil {
		return err
	}
	h.Sink.Emit(fmt.Sprintf(MsgHeaterValue, val))
	h.Sink.Emit(command.MsgProcessed)
	return nil
}

// DefaultEntries builds the reference dispatch table.
func DefaultEntries(led LED, heater Heater, sink console.Sink) []command.Entry {
	return []command.Entry{
		{Name: CmdLightOn, Handler: &LightOn{LED: led, Sink: sink}},
		{Name: CmdGetHeater, Handler: &GetHeater{Heater: heater, Sink: sink}},
	}
}
