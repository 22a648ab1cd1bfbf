// Command certification drives or serves the org.varlink.certification
// conformance suite (spec.md §8's S3/S4 scenarios, run end to end).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var protocol, socket string

	root := &cobra.Command{
		Use:   "certification",
		Short: "Run the org.varlink.certification conformance suite",
	}
	root.PersistentFlags().StringVar(&protocol, "protocol", "tcp", "protocol (tcp, unix, ...)")
	root.PersistentFlags().StringVar(&socket, "socket", "127.0.0.1:12345", "socket address")

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Serve org.varlink.certification on an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), protocol, socket)
		},
	}

	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Drive the certification suite against a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client(protocol, socket)
			return nil
		},
	}

	root.AddCommand(serverCmd, clientCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}
