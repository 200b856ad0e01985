package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lox/internal/source"
	"lox/internal/vm"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.lox>",
	Short: "Disassemble a Lox source file",
	Long:  `Compile a Lox source file and print the bytecode of the script and every nested function`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func runDisasm(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	file, err := source.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	in := newInterpreter(cfg)
	fn, ok := in.compile(file)
	if !ok {
		os.Exit(exitCompile)
	}
	vm.DisassembleFunction(os.Stdout, fn)
	return nil
}
