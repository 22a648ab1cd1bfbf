package varlink

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type pipeConn struct {
	net.Conn
	r *bytes.Buffer
	w *bytes.Buffer
}

func (p *pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipeConn) Close() error                { return nil }

func newPipeConn(in string) *pipeConn {
	return &pipeConn{r: bytes.NewBufferString(in), w: new(bytes.Buffer)}
}

func TestFrameReadWriteRoundTrip(t *testing.T) {
	p := newPipeConn("")
	c := newConn(p)

	require.NoError(t, c.writeMessage(map[string]string{"a": "1"}))
	require.NoError(t, c.writeMessage(map[string]string{"b": "2"}))

	r := newConn(&pipeConn{r: bytes.NewBuffer(p.w.Bytes()), w: new(bytes.Buffer)})

	var m1, m2 map[string]string
	require.NoError(t, r.readMessage(&m1))
	require.NoError(t, r.readMessage(&m2))
	require.Equal(t, map[string]string{"a": "1"}, m1)
	require.Equal(t, map[string]string{"b": "2"}, m2)

	var m3 map[string]string
	require.Equal(t, io.EOF, r.readMessage(&m3))
}

func TestFrameCleanEOF(t *testing.T) {
	r := newConn(newPipeConn(""))
	var m map[string]string
	require.Equal(t, io.EOF, r.readMessage(&m))
}

func TestFrameInvalidFrameOnPartialMessage(t *testing.T) {
	// A JSON body with no trailing NUL: the decoder can parse the value,
	// but there's nothing left to satisfy the one-byte delimiter read.
	r := newConn(newPipeConn(`{"a":1}`))
	var m map[string]int
	err := r.readMessage(&m)
	require.ErrorIs(t, err, ErrInvalidFrame)
}

func TestFrameEmptyBodyIsDecodeError(t *testing.T) {
	r := newConn(newPipeConn("\x00"))
	var m map[string]int
	err := r.readMessage(&m)
	require.Error(t, err)
}
