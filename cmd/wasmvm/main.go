package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wasmvm-go/wasmvm/cmd/wasmvm/run"
)

var version = "<unknown>"

func configureCLI() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "wasmvm",
		Short:         "wasmvm WebAssembly interpreter",
		Long:          "wasmvm - a minimal Wasm v1 decoder, store, and stack-machine interpreter",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCommand.AddCommand(run.Command())

	return rootCommand
}

func main() {
	if err := configureCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
