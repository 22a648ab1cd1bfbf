package main

import (
	"context"
	"fmt"

	"github.com/varlinkd/go-varlink"
	"github.com/varlinkd/go-varlink/internal/certification"
)

func runServer(ctx context.Context, protocol, socket string) error {
	log := newLogger()
	defer log.Sync()

	d := varlink.NewDispatcher(varlink.DispatcherOptions{
		Vendor:  "varlinkd",
		Product: "go-varlink-certification",
		Version: "1",
		URL:     "https://github.com/varlinkd/go-varlink",
	})
	if err := d.Register(certification.NewServer()); err != nil {
		return err
	}

	address := fmt.Sprintf("%s:%s", protocol, socket)
	ln, err := varlink.Listen(address)
	if err != nil {
		return err
	}
	defer ln.Close()

	log.Infow("listening", "address", address)

	srv := varlink.NewServer(d)
	srv.Logger = log
	return srv.Serve(ctx, ln)
}
