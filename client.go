package varlink

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// clientReply mirrors the wire reply shape from the client's point of view.
type clientReply struct {
	Parameters json.RawMessage `json:"parameters"`
	Continues  bool            `json:"continues"`
	Error      string          `json:"error"`
}

// pendingCall tracks one outstanding request awaiting its reply stream.
type pendingCall struct {
	ch      chan clientReply
	more    bool
	upgrade bool
}

// Client is a Varlink client connection (C8, spec.md §4.5). Calls are
// strictly sequential per the underlying protocol (spec.md §1 non-goals:
// no multiplexing), but a Client may have several calls pipelined — the
// read loop matches replies to requests in FIFO order, the only ordering
// the wire protocol itself offers.
type Client struct {
	conn net.Conn

	// teardown releases resources acquired to establish the connection
	// (exec: child process, scratch socket directory); nil otherwise.
	teardown func()

	mutex    sync.Mutex
	brw      *bufio.ReadWriter
	enc      *json.Encoder
	dec      *json.Decoder
	pending  []*pendingCall
	err      error
	upgraded bool

	// upgradeLeftover mirrors frame.go conn's field of the same name: the
	// bytes readMessage found already buffered past the last reply's NUL
	// delimiter, replayed by DoUpgrade so an upgraded protocol's first
	// bytes (arrived in the same read as the reply) aren't lost.
	upgradeLeftover []byte
}

// NewClient wraps an already-established connection.
func NewClient(c net.Conn) *Client {
	return newClient(c, nil)
}

func newClient(c net.Conn, teardown func()) *Client {
	inner := newConn(c)
	cl := &Client{
		conn:     c,
		teardown: teardown,
		brw:      inner.brw,
		enc:      inner.enc,
		dec:      inner.dec,
	}
	go cl.readLoop()
	return cl
}

// Dial connects to address, the way Connection::new does in spec.md §4.5:
// exec: addresses spawn a child process and dial the socket it advertises;
// every other scheme dials directly.
func Dial(address string) (*Client, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	if addr.Kind == AddressExec {
		return dialExec(addr.Executable)
	}
	c, err := varlinkDial(addr)
	if err != nil {
		return nil, err
	}
	return newClient(c, nil), nil
}

func varlinkDial(addr *Address) (net.Conn, error) {
	switch addr.Kind {
	case AddressTCP:
		return net.Dial("tcp", addr.HostPort)
	case AddressUnix:
		return net.Dial("unix", addr.Path)
	case AddressAbstractUnix:
		return dialAbstractUnix(addr.Name)
	default:
		return nil, pkgerrors.Errorf("varlink: %q cannot be dialed directly", addr.String())
	}
}

// dialExec launches executable with an inherited listening socket on fd 3
// and LISTEN_* environment (spec.md §3 address lifecycle,
// original_source/varlink/src/client.rs's varlink_exec), then connects to
// the socket the child is told to use.
func dialExec(executable string) (*Client, error) {
	dir, err := os.MkdirTemp("", "varlink-")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "varlink: exec: scratch dir")
	}
	sockPath := filepath.Join(dir, "varlink-socket")

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		os.RemoveAll(dir)
		return nil, pkgerrors.Wrap(err, "varlink: exec: listen")
	}
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	lnFile, err := ln.(*net.UnixListener).File()
	if err != nil {
		ln.Close()
		os.RemoveAll(dir)
		return nil, pkgerrors.Wrap(err, "varlink: exec: listener fd")
	}

	// LISTEN_PID must be the child's own pid, known only after the fork:
	// the shell sets it to its pid and execs the executable in place.
	cmd := exec.Command("/bin/sh", "-c", `LISTEN_PID=$$ exec "$0" "$@"`, executable, "--varlink=unix:"+sockPath)
	cmd.ExtraFiles = []*os.File{lnFile}
	cmd.Env = append(os.Environ(),
		"LISTEN_FDS=1",
		"LISTEN_FDNAMES=varlink",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		lnFile.Close()
		ln.Close()
		os.RemoveAll(dir)
		return nil, pkgerrors.Wrap(err, "varlink: exec: start")
	}
	// The child now owns the socket via its inherited fd 3; our copies are
	// no longer needed for accepting, only the path for dialing.
	lnFile.Close()
	ln.Close()

	c, err := net.Dial("unix", sockPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(dir)
		return nil, pkgerrors.Wrap(err, "varlink: exec: dial")
	}

	teardown := func() {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(dir)
	}
	return newClient(c, teardown), nil
}

// Close releases the connection and any exec: child process / scratch
// directory owned by this Client (spec.md §5 "Resource scoping").
func (c *Client) Close() error {
	err := c.conn.Close()
	if c.teardown != nil {
		c.teardown()
	}
	return err
}

func (c *Client) writeMessageLocked(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := c.brw.Write(append(b, 0)); err != nil {
		return err
	}
	return c.brw.Flush()
}

func (c *Client) readMessage(v interface{}) error {
	if err := c.dec.Decode(v); err != nil {
		return err
	}

	buffered := c.dec.Buffered()
	var b [1]byte
	if _, err := io.ReadFull(buffered, b[:]); err != nil {
		return err
	} else if b[0] != 0 {
		return errInvalidDelimiter(b[0])
	}

	rest, err := io.ReadAll(buffered)
	if err != nil {
		return err
	}
	c.upgradeLeftover = rest
	c.dec = json.NewDecoder(io.MultiReader(bytesReader(rest), c.brw))
	return nil
}

type clientRequest struct {
	Method     string      `json:"method"`
	Parameters interface{} `json:"parameters"`
	More       bool        `json:"more,omitempty"`
	Oneway     bool        `json:"oneway,omitempty"`
	Upgrade    bool        `json:"upgrade,omitempty"`
}

func (c *Client) writeRequest(req *clientRequest, pc *pendingCall) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}
	if c.upgraded {
		return pkgerrors.New("varlink: connection already upgraded")
	}

	if pc != nil {
		c.pending = append(c.pending, pc)
	}

	if err := c.writeMessageLocked(req); err != nil {
		c.err = err
		c.conn.Close()
		return err
	}
	return nil
}

func (c *Client) readLoop() {
	var err error
	defer func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		if err != nil {
			c.err = err
		}
		for _, pc := range c.pending {
			close(pc.ch)
		}
		c.pending = nil
	}()

	for {
		c.mutex.Lock()
		if c.upgraded {
			c.mutex.Unlock()
			return
		}
		c.mutex.Unlock()

		var r clientReply
		if err = c.readMessage(&r); err != nil {
			if err == io.EOF {
				err = nil
			}
			return
		}

		c.mutex.Lock()
		if len(c.pending) == 0 {
			c.mutex.Unlock()
			err = pkgerrors.New("varlink: received reply without a pending request")
			return
		}
		pc := c.pending[0]
		final := !pc.more || !r.Continues || r.Error != ""
		upgraded := false
		if final {
			c.pending = c.pending[1:]
			if pc.upgrade && r.Error == "" {
				// Flip upgraded from inside the read loop itself, under the
				// same lock that gates the next blocking read, so no byte of
				// the raw stream can be consumed by c.dec after the reply
				// that authorizes the handoff.
				c.upgraded = true
				upgraded = true
			}
		}
		c.mutex.Unlock()

		pc.ch <- r
		if final {
			close(pc.ch)
		}
		if upgraded {
			return
		}
	}
}

// Do sends a normal call (neither More, Oneway, nor Upgrade): exactly one
// reply is read back. If the reply carries an error, it is returned as
// *Error.
func (c *Client) Do(method string, in, out interface{}) error {
	if in == nil {
		in = struct{}{}
	}
	pc := &pendingCall{ch: make(chan clientReply, 1)}
	if err := c.writeRequest(&clientRequest{Method: method, Parameters: in}, pc); err != nil {
		return err
	}
	r, ok := <-pc.ch
	if !ok {
		return c.connError()
	}
	return decodeReply(r, out)
}

// MoreCall is the streaming iterator returned by DoMore (spec.md §4.5
// "more"). It is single-pass and not restartable.
type MoreCall struct {
	ch <-chan clientReply
}

// Next decodes the next reply into out. It returns io.EOF once the final
// (non-continuing) reply has been delivered.
func (m *MoreCall) Next(out interface{}) error {
	r, ok := <-m.ch
	if !ok {
		return io.EOF
	}
	return decodeReply(r, out)
}

// DoMore sends a request with More set and returns an iterator over the
// reply stream (spec.md §4.5 "more").
func (c *Client) DoMore(method string, in interface{}) (*MoreCall, error) {
	if in == nil {
		in = struct{}{}
	}
	pc := &pendingCall{ch: make(chan clientReply, 8), more: true}
	if err := c.writeRequest(&clientRequest{Method: method, Parameters: in, More: true}, pc); err != nil {
		return nil, err
	}
	return &MoreCall{ch: pc.ch}, nil
}

// DoOneway sends a request with Oneway set and returns immediately after
// the write, without waiting for (or expecting) a reply.
func (c *Client) DoOneway(method string, in interface{}) error {
	if in == nil {
		in = struct{}{}
	}
	return c.writeRequest(&clientRequest{Method: method, Parameters: in, Oneway: true}, nil)
}

// DoUpgrade sends a request with Upgrade set, reads the single reply, then
// exposes the raw bidirectional byte stream for the caller to speak
// whatever protocol the interface upgrades to (spec.md §4.5 "upgrade").
func (c *Client) DoUpgrade(method string, in, out interface{}) (io.ReadWriter, error) {
	if in == nil {
		in = struct{}{}
	}
	pc := &pendingCall{ch: make(chan clientReply, 1), upgrade: true}
	if err := c.writeRequest(&clientRequest{Method: method, Parameters: in, Upgrade: true}, pc); err != nil {
		return nil, err
	}
	r, ok := <-pc.ch
	if !ok {
		return nil, c.connError()
	}
	if err := decodeReply(r, out); err != nil {
		return nil, err
	}
	return &combinedStream{
		r: io.MultiReader(bytesReader(c.upgradeLeftover), c.brw.Reader),
		w: c.conn,
	}, nil
}

func (c *Client) connError() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.err
}

func decodeReply(r clientReply, out interface{}) error {
	if r.Error != "" {
		return &Error{Name: r.Error, Parameters: r.Parameters}
	}
	params := r.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(params, out)
}
