// Package env builds a runnable command line from flags and environment.
package env

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/ucl.go/pkg/console"
	"github.com/robotalks/ucl.go/pkg/device"
	"github.com/robotalks/ucl.go/pkg/frame"
	"github.com/robotalks/ucl.go/pkg/sched"
)

// EnvMQTTURL overrides the default MQTT broker URL.
const EnvMQTTURL = "UCL_MQTT_URL"

// Config provides options to setup an Env.
type Config struct {
	// Input is the serial device path, "-" for stdin or "" for none.
	Input string

	PoolSize   int
	BlockSize  int
	PageBlocks int
	ValidateAt int
	ParentTag  string

	Interval  time.Duration
	TxRetries int

	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	DeviceID      string

	// WebsocketAddr is the listen address, empty to disable.
	WebsocketAddr string
}

var defaultConfig = Config{
	Input:      "-",
	PoolSize:   1024,
	BlockSize:  32,
	PageBlocks: frame.DefaultPageBlocks,
	ValidateAt: frame.DefaultValidateAt,
	ParentTag:  frame.DefaultParentTag,
	Interval:   sched.DefaultInterval,
	TxRetries:  console.DefaultRetries,
}

func init() {
	defaultConfig.MQTTBrokerURL = os.Getenv(EnvMQTTURL)
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Input, "input", defaultConfig.Input, "Serial device path, - for stdin, empty for none")
	flag.IntVar(&defaultConfig.PoolSize, "pool-size", defaultConfig.PoolSize, "Memory pool size in bytes")
	flag.IntVar(&defaultConfig.BlockSize, "block-size", defaultConfig.BlockSize, "Memory pool block size in bytes")
	flag.IntVar(&defaultConfig.PageBlocks, "page-blocks", defaultConfig.PageBlocks, "Blocks per frame buffer")
	flag.IntVar(&defaultConfig.ValidateAt, "validate-at", defaultConfig.ValidateAt, "Cursor position of the opening tag check")
	flag.StringVar(&defaultConfig.ParentTag, "tag", defaultConfig.ParentTag, "Frame tag")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Main loop interval")
	flag.IntVar(&defaultConfig.TxRetries, "tx-retries", defaultConfig.TxRetries, "Ready polls per transmitted byte")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, defaults to machine ID")
	flag.StringVar(&defaultConfig.WebsocketAddr, "websocket", defaultConfig.WebsocketAddr, "WebSocket listen address")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// DeviceConfig converts to device sizing.
func (c *Config) DeviceConfig() device.Config {
	return device.Config{
		PoolSize:  c.PoolSize,
		BlockSize: c.BlockSize,
		Frame: frame.Config{
			ParentTag:  c.ParentTag,
			PageBlocks: c.PageBlocks,
			ValidateAt: c.ValidateAt,
		},
	}
}
