// Command varlinkgen renders Go bindings for a .varlink interface
// definition (C11), the way original_source/varlink/src/bin/cli.rs drives
// its own generator from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/varlinkd/go-varlink/varlinkdef"
	"github.com/varlinkd/go-varlink/varlinkgen"
)

func main() {
	var input, output, pkg string

	root := &cobra.Command{
		Use:   "varlinkgen",
		Short: "Generate Go bindings from a .varlink interface definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(input, output, pkg)
		},
	}
	root.Flags().StringVarP(&input, "input", "i", "", "path to the .varlink source file")
	root.Flags().StringVarP(&output, "output", "o", "", "output path (default: <input base>_generated.go next to the input)")
	root.Flags().StringVarP(&pkg, "package", "p", "", "generated package name (default: the input file's directory name)")
	root.MarkFlagRequired("input")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(input, output, pkg string) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	iface, err := varlinkdef.Read(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", input, err)
	}

	if pkg == "" {
		pkg = filepath.Base(filepath.Dir(input))
	}
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(filepath.Dir(input), base+"_generated.go")
	}

	f, err := varlinkgen.Generate(iface, string(raw), pkg)
	if err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	return f.Render(out)
}
