package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lox/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.lox>",
	Short: "Compile and execute a Lox script",
	Long:  `Compile a Lox source file to bytecode and execute it on the VM`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func runExecution(cmd *cobra.Command, args []string) error {
	return runScript(cmd, args[0])
}

// runStdin executes everything piped in as one script.
func runStdin(cmd *cobra.Command) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	file := source.NewFile("<stdin>", content)
	if code := newInterpreter(cfg).interpret(file); code != 0 {
		os.Exit(code)
	}
	return nil
}
