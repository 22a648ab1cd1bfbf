// Package varlink implements the Varlink protocol.
//
// See https://varlink.org/
package varlink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
)

// ErrInvalidFrame is returned when the stream ends in the middle of a
// message, after at least one byte of a frame has already been read.
var ErrInvalidFrame = errors.New("varlink: invalid frame: end of stream mid-message")

// Error is returned by Client.Do when the server replies with an
// "error" field.
type Error struct {
	Name       string
	Parameters json.RawMessage
}

func (err *Error) Error() string {
	return "varlink: request failed: " + err.Name
}

// conn wraps a net.Conn with NUL-terminated JSON message framing (C1).
//
// Frames are NUL-terminated UTF-8 JSON objects; there is no length prefix
// and no header. Reads stop at the first NUL byte following a complete
// JSON value; writes append a single NUL after the encoded value.
type conn struct {
	net.Conn

	brw *bufio.ReadWriter
	enc *json.Encoder
	dec *json.Decoder

	// upgradeLeftover holds whatever readMessage found already buffered
	// past the last frame's NUL delimiter. On an Upgrade call this is the
	// start of the peer's upgraded-protocol bytes, arrived in the same
	// read as the frame itself; upgradedStream replays it so the handoff
	// doesn't silently drop it (spec.md §4.3 "Upgrade call").
	upgradeLeftover []byte
}

func newConn(c net.Conn) *conn {
	brw := &bufio.ReadWriter{
		Reader: bufio.NewReader(c),
		Writer: bufio.NewWriter(c),
	}
	return &conn{
		Conn: c,
		brw:  brw,
		enc:  json.NewEncoder(brw),
		dec:  json.NewDecoder(brw),
	}
}

func (c *conn) writeMessage(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := c.brw.Write(append(b, 0)); err != nil {
		return err
	}
	return c.brw.Flush()
}

// readMessage reads one NUL-terminated JSON frame into v.
//
// io.EOF is returned verbatim when the stream ends cleanly before any byte
// of a new frame has been read. ErrInvalidFrame is returned when the stream
// ends after a partial frame has already been consumed (§9 open question).
func (c *conn) readMessage(v interface{}) error {
	if err := c.dec.Decode(v); err != nil {
		if err == io.EOF {
			return io.EOF
		} else if err == io.ErrUnexpectedEOF {
			return ErrInvalidFrame
		}
		return err
	}

	buffered := c.dec.Buffered()
	var b [1]byte
	if _, err := io.ReadFull(buffered, b[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrInvalidFrame
		}
		return err
	} else if b[0] != 0 {
		return errInvalidDelimiter(b[0])
	}

	// Anything still left in the same buffered reader came in with this
	// frame but past its delimiter; stash it in case this is an Upgrade
	// call's final frame.
	rest, err := io.ReadAll(buffered)
	if err != nil {
		return err
	}
	c.upgradeLeftover = rest
	// The decoder's own buffer still holds the delimiter just read; the next
	// frame is decoded from the bytes after it.
	c.dec = json.NewDecoder(io.MultiReader(bytesReader(rest), c.brw))
	return nil
}

// upgradedStream exposes the connection as the raw, unframed byte stream
// handed to CallUpgraded once an Upgrade call's reply has been sent
// (spec.md §4.3). Bytes readMessage had already buffered past that reply's
// delimiter are replayed first, then reads continue from the same buffered
// reader the framing layer used, so nothing the peer already sent is lost.
func (c *conn) upgradedStream() io.ReadWriter {
	return &combinedStream{
		r: io.MultiReader(bytesReader(c.upgradeLeftover), c.brw.Reader),
		w: c.Conn,
	}
}

// combinedStream pairs an independent reader and writer into an
// io.ReadWriter, the way an upgraded Varlink connection keeps writing
// straight to the socket while its reads are spliced with already-buffered
// bytes.
type combinedStream struct {
	r io.Reader
	w io.Writer
}

func (s *combinedStream) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *combinedStream) Write(p []byte) (int, error) { return s.w.Write(p) }

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

type errInvalidDelimiter byte

func (err errInvalidDelimiter) Error() string {
	return fmt.Sprintf("varlink: expected NUL delimiter, got %d", byte(err))
}
