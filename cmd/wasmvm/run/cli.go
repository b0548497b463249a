// Package run implements the "wasmvm run" subcommand: load a module file
// from disk, instantiate it with a WASI handler wired to the process's
// real stdio, and call its _start export (or the export named by --entry).
package run

import (
	"errors"
	"io/ioutil"

	"github.com/spf13/cobra"

	wasmvm "github.com/wasmvm-go/wasmvm"
	"github.com/wasmvm-go/wasmvm/wasi"
)

func Command() *cobra.Command {
	var entry string

	command := &cobra.Command{
		Use:   "run [path to module]",
		Short: "Run a Wasm v1 module",
		Long:  "Run a Wasm v1 module's exported entry point inside a fd_write-only WASI environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("expected a path to a .wasm module")
			}

			raw, err := ioutil.ReadFile(args[0])
			if err != nil {
				return err
			}

			rt, err := wasmvm.InstantiateWithWasi(raw, wasi.NewHandler())
			if err != nil {
				return err
			}

			_, err = rt.Call(entry, nil)
			return err
		},
	}

	command.Flags().StringVar(&entry, "entry", "_start", "exported function to call")

	return command
}
