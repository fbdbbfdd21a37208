package websocket

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/ucl.go/pkg/command"
	"github.com/robotalks/ucl.go/pkg/device"
)

type serverTestCtx struct {
	t       *testing.T
	server  *Server
	dev     *device.Device
	led     *device.SimLED
	frameCh chan struct{}
	http    *httptest.Server
}

func newServerTestCtx(t *testing.T) *serverTestCtx {
	c := &serverTestCtx{t: t, led: &device.SimLED{}, frameCh: make(chan struct{}, 1)}
	c.server = NewServer("", nil)
	dev, err := device.New(device.DefaultConfig(), c.server,
		device.DefaultEntries(c.led, &device.SimHeater{}, c.server)...)
	require.NoError(t, err)
	dev.OnFrame(func() { c.frameCh <- struct{}{} })
	c.dev, c.server.Device = dev, dev
	c.http = httptest.NewServer(c.server.Handler())
	return c
}

func (c *serverTestCtx) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(c.http.URL, "http")
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(c.t, err)
	return conn
}

func (c *serverTestCtx) dispatch() {
	select {
	case <-c.frameCh:
	case <-time.After(time.Second):
		c.t.Fatal("frame not assembled")
	}
	require.True(c.t, c.dev.Poll(context.Background()))
}

func receive(t *testing.T, conn *websocket.Conn) string {
	var msg string
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, websocket.Message.Receive(conn, &msg))
	return msg
}

func TestPeerRoundTrip(t *testing.T) {
	c := newServerTestCtx(t)
	defer c.http.Close()
	conn := c.dial()
	defer conn.Close()

	require.NoError(t, websocket.Message.Send(conn, "<UCL><CMD>LightOn</CMD><PARAM>7</PARAM></UCL>"))
	c.dispatch()
	require.Equal(t, "\nFirst Command: LightOn\n", receive(t, conn))
	require.Equal(t, command.MsgProcessed, receive(t, conn))
	val, _ := c.led.State()
	require.Equal(t, "7", val)
}

func TestPeerDiagnostics(t *testing.T) {
	c := newServerTestCtx(t)
	defer c.http.Close()
	conn := c.dial()
	defer conn.Close()

	require.NoError(t, websocket.Message.Send(conn, "<UCL><CMD>Reboot</CMD></UCL>"))
	c.dispatch()
	require.Equal(t, command.MsgNoCommandFound, receive(t, conn))
}

func TestPeerDisconnectReleasesSource(t *testing.T) {
	c := newServerTestCtx(t)
	defer c.http.Close()
	conn := c.dial()
	require.NoError(t, websocket.Message.Send(conn, "<UCL><CMD>Li"))
	conn.Close()
	waitFor(t, func() bool {
		return c.server.Peers() == 0 && c.dev.Pool.FreeBlocks() == c.dev.Pool.BlockCount()
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-doneCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCancelClosesPeers(t *testing.T) {
	c := newServerTestCtx(t)
	c.http.Close()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- c.server.Serve(ctx, ln) }()

	conn, err := websocket.Dial("ws://"+ln.Addr().String()+"/", "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, websocket.Message.Send(conn, "<UCL><CMD>Li"))
	waitFor(t, func() bool {
		return c.server.Peers() == 1 && c.dev.Pool.FreeBlocks() < c.dev.Pool.BlockCount()
	})

	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
	waitFor(t, func() bool {
		return c.server.Peers() == 0 && c.dev.Pool.FreeBlocks() == c.dev.Pool.BlockCount()
	})
	var msg string
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.Error(t, websocket.Message.Receive(conn, &msg))
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}
