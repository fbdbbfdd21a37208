package device

import (
	"context"

	"github.com/robotalks/ucl.go/pkg/sched"
)

// Consumer runs Device.Poll as a loop controller.
type Consumer struct {
	Device *Device
}

// Control implements sched.Controller.
func (c *Consumer) Control(ctx context.Context) error {
	c.Device.Poll(ctx)
	return nil
}

// AddToLoop implements sched.LoopAdder. Published frames wake the loop
// immediately instead of waiting for the next tick.
func (c *Consumer) AddToLoop(l *sched.Loop) {
	c.Device.OnFrame(l.TriggerNext)
	l.AddController(c)
}
