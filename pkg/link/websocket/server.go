// Package websocket serves the command line to WebSocket peers. Every
// connection is a byte source of its own and receives all diagnostics.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/ucl.go/pkg/link"
	"github.com/robotalks/ucl.go/pkg/sched"
)

// DefaultWriteTimeout bounds a diagnostic write to one peer.
const DefaultWriteTimeout = time.Second

// Server accepts WebSocket peers.
type Server struct {
	Addr         string
	Path         string
	Device       link.SourceFactory
	WriteTimeout time.Duration

	peers map[*websocket.Conn]struct{}
	lock  sync.RWMutex
}

// NewServer creates a Server listening on addr and serving on "/".
func NewServer(addr string, dev link.SourceFactory) *Server {
	return &Server{Addr: addr, Path: "/", Device: dev, WriteTimeout: DefaultWriteTimeout}
}

// Name implements sched.Named.
func (s *Server) Name() string {
	return "websocket:" + s.Addr
}

// Handler returns the WebSocket handler, usable without Run.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

// Run implements sched.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts peers on ln until ctx is canceled. Connected peers are
// closed when it returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler())
	server := &http.Server{Handler: mux}
	defer s.closePeers()
	glog.Infof("websocket: listening on %s%s", ln.Addr(), s.Path)
	err := sched.RunClosable(ctx, server, func() error {
		return server.Serve(ln)
	})
	if err == http.ErrServerClosed {
		return ctx.Err()
	}
	return err
}

// Emit implements console.Sink, sending msg as a text frame to every peer.
func (s *Server) Emit(msg string) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for conn := range s.peers {
		if s.WriteTimeout > 0 {
			conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
		}
		if err := websocket.Message.Send(conn, msg); err != nil {
			glog.V(2).Infof("websocket: send to %s: %v", conn.Request().RemoteAddr, err)
		}
	}
}

// Peers returns the number of connected peers.
func (s *Server) Peers() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.peers)
}

func (s *Server) serve(conn *websocket.Conn) {
	name := "websocket:" + conn.Request().RemoteAddr
	src, err := s.Device.NewSource(name, conn)
	if err != nil {
		glog.Errorf("%s: %v", name, err)
		return
	}
	defer s.Device.CloseSource(src)
	s.addPeer(conn)
	defer s.removePeer(conn)
	glog.Infof("%s: connected", name)
	if err := src.Run(conn.Request().Context()); err != nil {
		glog.V(2).Infof("%s: %v", name, err)
	}
	glog.Infof("%s: disconnected", name)
}

func (s *Server) addPeer(conn *websocket.Conn) {
	s.lock.Lock()
	if s.peers == nil {
		s.peers = make(map[*websocket.Conn]struct{})
	}
	s.peers[conn] = struct{}{}
	s.lock.Unlock()
}

// closePeers disconnects hijacked connections, which http.Server.Close
// leaves open.
func (s *Server) closePeers() {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for conn := range s.peers {
		conn.Close()
	}
}

func (s *Server) removePeer(conn *websocket.Conn) {
	s.lock.Lock()
	delete(s.peers, conn)
	s.lock.Unlock()
}
