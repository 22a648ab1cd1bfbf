//go:build generate

package main

import (
	_ "github.com/varlinkd/go-varlink/cmd/varlinkgen"
)

//go:generate go run github.com/varlinkd/go-varlink/cmd/varlinkgen -i pingapi/org.example.ping.varlink
//go:generate go run github.com/varlinkd/go-varlink/cmd/varlinkgen -i fooapi/org.example.foo.varlink
