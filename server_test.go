package varlink

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countArgs struct {
	N int `json:"n"`
}

type countReply struct {
	I int `json:"i"`
}

// countInterface exercises More and Oneway semantics (spec.md §8 S4/S5).
type countInterface struct {
	fired chan struct{}
}

func (countInterface) Name() string        { return "org.example.foo" }
func (countInterface) Description() string { return "interface org.example.foo\n" }

func (countInterface) HasMethod(method string) bool {
	switch method {
	case "Count", "Fire":
		return true
	default:
		return false
	}
}

func (c countInterface) Call(call *Call, req *Request) error {
	switch req.Method {
	case "org.example.foo.Count":
		var in countArgs
		if err := json.Unmarshal(req.parameters(), &in); err != nil {
			return call.ReplyError("org.varlink.service.InvalidParameter", map[string]string{"parameter": "n"})
		}
		for i := 1; i <= in.N; i++ {
			if i == in.N {
				if err := call.Reply(countReply{I: i}); err != nil {
					return err
				}
			} else {
				if err := call.ReplyContinue(countReply{I: i}); err != nil {
					return err
				}
			}
		}
		return nil
	case "org.example.foo.Fire":
		if c.fired != nil {
			close(c.fired)
		}
		return nil
	default:
		return ErrMethodNotFound
	}
}

func startTestServer(t *testing.T, d *Dispatcher) (*Client, func()) {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	srv := NewServer(d)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.serveConn(ctx, newConn(serverConn))

	cl := NewClient(clientConn)
	return cl, func() {
		cancel()
		cl.Close()
	}
}

func TestServerPingRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	cl, stop := startTestServer(t, d)
	defer stop()

	var out pingReply
	require.NoError(t, cl.Do("org.example.ping.Ping", pingArgs{Ping: "hello"}, &out))
	require.Equal(t, "hello", out.Pong)
}

func TestServerUnknownMethod(t *testing.T) {
	d := newTestDispatcher(t)
	cl, stop := startTestServer(t, d)
	defer stop()

	err := cl.Do("org.example.ping.Nope", nil, nil)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "org.varlink.service.MethodNotFound", verr.Name)
}

func TestServerStreaming(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{})
	require.NoError(t, d.Register(countInterface{}))
	cl, stop := startTestServer(t, d)
	defer stop()

	call, err := cl.DoMore("org.example.foo.Count", countArgs{N: 3})
	require.NoError(t, err)

	var got []int
	for {
		var out countReply
		err := call.Next(&out)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, out.I)
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestServerOneway(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{})
	fired := make(chan struct{})
	require.NoError(t, d.Register(countInterface{fired: fired}))
	cl, stop := startTestServer(t, d)
	defer stop()

	require.NoError(t, cl.DoOneway("org.example.foo.Fire", countArgs{}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("oneway handler was not invoked")
	}

	// The connection must still be usable afterwards (spec.md §8 S5).
	var out countReply
	require.NoError(t, cl.Do("org.example.foo.Count", countArgs{N: 1}, &out))
	require.Equal(t, 1, out.I)
}
