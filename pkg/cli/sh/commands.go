package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ucl.go/pkg/command"
	"github.com/robotalks/ucl.go/pkg/xmltag"
)

// Request builds a frame for cmd and param with the configured tags.
func (s *Shell) Request(cmd, param string) []byte {
	return xmltag.Encode(s.Env.Config.ParentTag,
		xmltag.Field{Tag: command.TagCommand, Value: cmd},
		xmltag.Field{Tag: command.TagParam, Value: param})
}

func printDiags(c *ishell.Context, diags []string) {
	s := ShellFrom(c)
	if len(diags) == 0 {
		s.Print(c, []string{}, "(no response)\n")
		return
	}
	s.Print(c, diags, "%s", strings.Join(diags, ""))
}

var (
	// SendCmd sends a well-formed request.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "CMD [PARAM]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("command name expected"))
				return
			}
			s := ShellFrom(c)
			param := strings.Join(c.Args[1:], " ")
			printDiags(c, s.Exchange(s.Request(c.Args[0], param)))
		},
	}

	// RawCmd feeds raw text to the line.
	RawCmd = ishell.Cmd{
		Name:    "raw",
		Aliases: []string{"r"},
		Help:    "TEXT",
		Func: func(c *ishell.Context) {
			printDiags(c, ShellFrom(c).Exchange([]byte(strings.Join(c.Args, " "))))
		},
	}

	// StatsCmd prints the device counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Env.Device.Stats()
			f := st.Frame
			s.Print(c, st,
				"bytes %d frames %d processed %d rejected %d overflows %d dropped %d alloc-failures %d no-results %d\n",
				f.Bytes, f.Frames, st.Processed, f.Rejected, f.Overflows, f.Dropped, f.AllocFailures, st.NoResults)
		},
	}

	// PoolCmd prints the pool occupancy.
	PoolCmd = ishell.Cmd{
		Name: "pool",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Env.Device.Pool.Stats()
			s.Print(c, st, "blocks %d free %d allocs %d failures %d\n",
				st.Blocks, st.Free, st.Allocs, st.Failures)
		},
	}

	// LEDCmd shows the simulated LED.
	LEDCmd = ishell.Cmd{
		Name: "led",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			val, updates := s.Env.LED.State()
			s.Print(c, map[string]interface{}{"value": val, "updates": updates},
				"LED %q (%d updates)\n", val, updates)
		},
	}

	// HeaterCmd shows or sets the simulated heater reading.
	HeaterCmd = ishell.Cmd{
		Name: "heater",
		Help: "[VALUE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				val, err := strconv.ParseFloat(c.Args[0], 64)
				if err != nil {
					c.Err(err)
					return
				}
				s.Env.Heater.Set(val)
			}
			val, _ := s.Env.Heater.HeaterValue()
			s.Print(c, map[string]string{"value": val}, "heater %s\n", val)
		},
	}
)
