package varlink

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrTimeout is returned by ListenAndServe when the accept loop's idle
// timeout expires with no active connections (spec.md §4.4 "Shutdown
// policy", §7 "Timeout" error kind).
var ErrTimeout = errors.New("varlink: accept loop idle timeout")

// Handler processes a single Varlink request and optionally signals a
// connection upgrade (spec.md §4.2/§4.3). *Dispatcher implements Handler.
type Handler interface {
	Dispatch(call *Call, req *Request) (Upgrader, error)
}

// Server is a Varlink server (C6): it runs the per-connection read/write
// pump described in spec.md §4.3 over every connection Serve accepts.
type Server struct {
	Handler Handler

	// Logger receives connection lifecycle events. A nil Logger falls back
	// to zap.NewNop(), never to a silently swallowed error.
	Logger *zap.SugaredLogger
}

// NewServer creates a new Varlink server.
func NewServer(handler Handler) *Server {
	return &Server{Handler: handler}
}

func (srv *Server) logger() *zap.SugaredLogger {
	if srv.Logger != nil {
		return srv.Logger
	}
	return zap.NewNop().Sugar()
}

// Serve accepts connections from ln until ctx is canceled or Accept fails.
// Each connection is served on its own goroutine (spec.md §5 "Scheduling
// model").
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := srv.logger()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go func() {
			if err := srv.serveConn(ctx, newConn(c)); err != nil {
				log.Warnw("varlink: serving connection", "error", err)
			}
		}()
	}
}

// ListenAndServe binds address (C7, via Listen) and serves connections on
// it until ctx is canceled. If idleTimeout is positive, the accept loop
// exits with ErrTimeout once idleTimeout elapses with no new connection
// arriving and no connection currently active (spec.md §4.4); the caller
// may treat this as ordinary termination. A zero idleTimeout disables the
// idle shutdown policy.
func (srv *Server) ListenAndServe(ctx context.Context, address string, idleTimeout time.Duration) error {
	ln, err := Listen(address)
	if err != nil {
		return err
	}
	defer ln.Close()

	log := srv.logger()

	var active int32
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var idleTimer *time.Timer
	if idleTimeout > 0 {
		idleTimer = time.AfterFunc(idleTimeout, func() {
			if atomic.LoadInt32(&active) == 0 {
				cancel()
			}
		})
		defer idleTimer.Stop()
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if idleTimeout > 0 && atomic.LoadInt32(&active) == 0 && ctx.Err() != nil {
				return ErrTimeout
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if idleTimer != nil {
			idleTimer.Reset(idleTimeout)
		}
		atomic.AddInt32(&active, 1)

		go func() {
			defer func() {
				atomic.AddInt32(&active, -1)
				if idleTimer != nil {
					idleTimer.Reset(idleTimeout)
				}
			}()
			if err := srv.serveConn(ctx, newConn(c)); err != nil {
				log.Warnw("varlink: serving connection", "error", err)
			}
		}()
	}
}

// serveConn runs the per-connection loop (spec.md §4.3): read a frame,
// dispatch it, honor more/oneway/upgrade, repeat until the client
// disconnects or the context is canceled.
func (srv *Server) serveConn(ctx context.Context, c *conn) error {
	defer c.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		var req Request
		if err := c.readMessage(&req); err == io.EOF {
			return nil
		} else if errors.Is(err, ErrInvalidFrame) {
			return nil
		} else if err != nil {
			// Malformed JSON body: reply InvalidParameter and continue
			// (spec.md §7 "Decode" error kind).
			invalid := reply{
				Error:      "org.varlink.service.InvalidParameter",
				Parameters: map[string]string{"parameter": "method"},
			}
			if werr := c.writeMessage(&invalid); werr != nil {
				return werr
			}
			continue
		}

		call := &Call{conn: c, req: &req}
		upgrader, err := srv.Handler.Dispatch(call, &req)
		if err != nil {
			return err
		}

		if upgrader != nil {
			// spec.md §4.3 "Upgrade call": after the reply, bypass framing
			// entirely and exit the standard loop.
			return upgrader.CallUpgraded(&req, c.upgradedStream())
		}
	}
}
