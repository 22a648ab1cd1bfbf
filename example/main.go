// Command example serves the two interfaces in this directory
// (org.example.ping, org.example.foo), illustrating spec.md §8's S3
// (single-reply) and S4 (streaming) scenarios end to end over a real
// Unix socket.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/varlinkd/go-varlink"
	"github.com/varlinkd/go-varlink/example/fooapi"
	"github.com/varlinkd/go-varlink/example/pingapi"
)

type pingBackend struct{}

func (pingBackend) Ping(call *varlink.Call, in pingapi.PingIn) (pingapi.PingOut, error) {
	return pingapi.PingOut{Pong: in.Ping}, nil
}

// fooBackend implements org.example.foo, streaming Count's reply one step
// at a time when the caller asked for More and firing a channel so
// callers can observe a Oneway call actually landed.
type fooBackend struct {
	fired chan struct{}
}

func (b fooBackend) Count(call *varlink.Call, in fooapi.CountIn) (fooapi.CountOut, error) {
	if !call.WantsMore() || in.N <= 1 {
		return fooapi.CountOut{I: in.N}, nil
	}
	for i := int64(1); i < in.N; i++ {
		if err := call.ReplyContinue(fooapi.CountOut{I: i}); err != nil {
			return fooapi.CountOut{}, err
		}
	}
	return fooapi.CountOut{I: in.N}, nil
}

func (b fooBackend) Fire(call *varlink.Call, in fooapi.FireIn) (fooapi.FireOut, error) {
	if b.fired != nil {
		close(b.fired)
	}
	return fooapi.FireOut{}, nil
}

func main() {
	d := varlink.NewDispatcher(varlink.DispatcherOptions{
		Vendor:  "varlinkd",
		Product: "go-varlink example",
		Version: "1.0",
		URL:     "https://github.com/varlinkd/go-varlink",
	})
	if err := d.Register(pingapi.NewOrgExamplePingInterface(pingBackend{})); err != nil {
		log.Fatal(err)
	}
	if err := d.Register(fooapi.NewOrgExampleFooInterface(fooBackend{})); err != nil {
		log.Fatal(err)
	}

	const socketPath = "./org.example.sock"
	syscall.Unlink(socketPath)

	ln, err := varlink.Listen("unix:" + socketPath)
	if err != nil {
		log.Fatal(err)
	}
	defer ln.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := varlink.NewServer(d)
	log.Println("listening on unix:" + socketPath)
	if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
