package certification_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	varlink "github.com/varlinkd/go-varlink"
	"github.com/varlinkd/go-varlink/internal/certification"
)

func startCertificationServer(t *testing.T) (*certification.Client, func()) {
	t.Helper()

	d := varlink.NewDispatcher(varlink.DispatcherOptions{
		Vendor:  "Varlinkd",
		Product: "Certification",
		Version: "0.1",
		URL:     "https://example.invalid",
	})
	require.NoError(t, d.Register(certification.NewServer()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := varlink.NewServer(d)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx, ln)

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	cl := varlink.NewClient(clientConn)
	return &certification.Client{Client: cl}, func() {
		cancel()
		cl.Close()
		ln.Close()
	}
}

// TestCertificationFullRun drives the entire Start..End sequence the way
// cmd/certification's client does, and checks the server's canonical
// replies at each step.
func TestCertificationFullRun(t *testing.T) {
	c, stop := startCertificationServer(t)
	defer stop()

	start, err := c.Start(nil)
	require.NoError(t, err)
	require.NotEmpty(t, start.ClientId)
	id := start.ClientId

	test01, err := c.Test01(&certification.Test01In{ClientId: id})
	require.NoError(t, err)
	require.True(t, test01.Bool)

	test02, err := c.Test02(&certification.Test02In{ClientId: id, Bool: test01.Bool})
	require.NoError(t, err)
	require.EqualValues(t, 1, test02.Int)

	test03, err := c.Test03(&certification.Test03In{ClientId: id, Int: test02.Int})
	require.NoError(t, err)
	require.Equal(t, 1.0, test03.Float)

	test04, err := c.Test04(&certification.Test04In{ClientId: id, Float: test03.Float})
	require.NoError(t, err)
	require.Equal(t, "ping", test04.String)

	test05, err := c.Test05(&certification.Test05In{ClientId: id, String: test04.String})
	require.NoError(t, err)
	require.Equal(t, "a lot of string", test05.String)

	test06, err := c.Test06(&certification.Test06In{
		ClientId: id, Bool: test05.Bool, Int: test05.Int, Float: test05.Float, String: test05.String,
	})
	require.NoError(t, err)

	test07, err := c.Test07(&certification.Test07In{ClientId: id, Struct: test06.Struct})
	require.NoError(t, err)
	require.Len(t, test07.Map, 2)

	test08, err := c.Test08(&certification.Test08In{ClientId: id, Map: test07.Map})
	require.NoError(t, err)
	require.Len(t, test08.Set, 3)

	test09, err := c.Test09(&certification.Test09In{ClientId: id, Set: test08.Set})
	require.NoError(t, err)
	require.Equal(t, certification.MyTypeEnumTwo, test09.Mytype.Enum)

	more, err := c.Client.DoMore("org.varlink.certification.Test10", &certification.Test10In{
		ClientId: id, Mytype: test09.Mytype,
	})
	require.NoError(t, err)

	var replies []string
	for {
		var out certification.Test10Out
		if err := more.Next(&out); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		replies = append(replies, out.String)
	}
	require.Len(t, replies, 10)
	require.Equal(t, "Reply number 1", replies[0])

	err = c.Client.DoOneway("org.varlink.certification.Test11", &certification.Test11In{
		ClientId: id, LastMoreReplies: replies,
	})
	require.NoError(t, err)

	end, err := c.End(&certification.EndIn{ClientId: id})
	require.NoError(t, err)
	require.True(t, end.AllOk)
}

func TestCertificationOutOfOrderCallFails(t *testing.T) {
	c, stop := startCertificationServer(t)
	defer stop()

	start, err := c.Start(nil)
	require.NoError(t, err)

	_, err = c.Test02(&certification.Test02In{ClientId: start.ClientId, Bool: true})
	require.Error(t, err)
	var verr *varlink.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "org.varlink.certification.ClientIdError", verr.Name)
}

func TestCertificationUnknownClientIdFails(t *testing.T) {
	c, stop := startCertificationServer(t)
	defer stop()

	_, err := c.Test01(&certification.Test01In{ClientId: "does-not-exist"})
	require.Error(t, err)
	var verr *varlink.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "org.varlink.certification.ClientIdError", verr.Name)
}

func TestClientIDsExpire(t *testing.T) {
	ids := certification.NewClientIDs(time.Millisecond)
	id := ids.New()
	time.Sleep(5 * time.Millisecond)
	require.False(t, ids.Advance(id, "Test01", "Test02"))
}

func TestClientIDsAdvanceSequence(t *testing.T) {
	ids := certification.NewClientIDs(time.Hour)
	id := ids.New()
	require.True(t, ids.Advance(id, "Test01", "Test02"))
	require.False(t, ids.Advance(id, "Test01", "Test02"))
	require.True(t, ids.Advance(id, "Test02", "Test03"))
}
