package varlink

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// echoUpgradeInterface implements Upgrader to exercise spec.md §4.3
// "Upgrade call": after the reply, the connection switches to a raw,
// line-based echo protocol chosen by the handler.
type echoUpgradeInterface struct{}

func (echoUpgradeInterface) Name() string        { return "org.example.echo" }
func (echoUpgradeInterface) Description() string { return "interface org.example.echo\n" }

func (echoUpgradeInterface) HasMethod(method string) bool { return method == "Start" }

func (echoUpgradeInterface) Call(call *Call, req *Request) error {
	switch req.Method {
	case "org.example.echo.Start":
		return call.Reply(struct{}{})
	default:
		return ErrMethodNotFound
	}
}

func (echoUpgradeInterface) CallUpgraded(req *Request, rw io.ReadWriter) error {
	line, err := bufio.NewReader(rw).ReadString('\n')
	if err != nil {
		return err
	}
	_, err = rw.Write([]byte(line))
	return err
}

func TestServerUpgrade(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{})
	require.NoError(t, d.Register(echoUpgradeInterface{}))

	serverConn, clientConn := net.Pipe()
	srv := NewServer(d)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.serveConn(ctx, newConn(serverConn))

	cl := NewClient(clientConn)
	defer cl.Close()

	rw, err := cl.DoUpgrade("org.example.echo.Start", nil, nil)
	require.NoError(t, err)

	_, err = rw.Write([]byte("hello\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(rw).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "hello\n", line)
}

// TestClientUpgradeRetainsCoalescedBytes exercises DoUpgrade over a real
// TCP socket where the server writes the reply frame and the first bytes
// of the upgraded protocol in a single Write call, so they can arrive in
// one read syscall on the client side. net.Pipe's synchronous, one-write-
// per-read semantics can never reproduce this; a real socket can.
func TestClientUpgradeRetainsCoalescedBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Read (and discard) the single NUL-terminated request frame.
		reader := bufio.NewReader(conn)
		if _, err := reader.ReadBytes('\x00'); err != nil {
			return
		}

		reply := append([]byte(`{"parameters":{}}`), 0)
		// Appended in the same buffer as the reply so both are handed to
		// the kernel in one Write call.
		upgraded := []byte("hello\n")
		conn.Write(append(reply, upgraded...))
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	cl := NewClient(conn)
	defer cl.Close()

	rw, err := cl.DoUpgrade("org.example.echo.Start", nil, nil)
	require.NoError(t, err)

	line, err := bufio.NewReader(rw).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "hello\n", line)
}

func TestServerUpgradeNotImplemented(t *testing.T) {
	d := newTestDispatcher(t)
	cl, stop := startTestServer(t, d)
	defer stop()

	_, err := cl.DoUpgrade("org.example.ping.Ping", pingArgs{Ping: "x"}, nil)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "org.varlink.service.MethodNotImplemented", verr.Name)
}
