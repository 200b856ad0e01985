package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lox/internal/version"
)

// Exit codes follow sysexits: 64 usage, 65 compile error, 70 runtime error.
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

var rootCmd = &cobra.Command{
	Use:   "lox [file.lox]",
	Short: "Lox bytecode interpreter",
	Long:  `A single-pass compiler and stack virtual machine for the Lox language`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runExecution(cmd, args)
		}
		if isTerminal(os.Stdin) {
			return runREPL(cmd, args)
		}
		// Piped input: treat the whole of stdin as a script.
		return runStdin(cmd)
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("trace", false, "print the stack and each instruction while executing")
	rootCmd.PersistentFlags().Bool("print-code", false, "disassemble compiled code before running")
	rootCmd.PersistentFlags().Bool("gc-stress", false, "collect before every allocation")
	rootCmd.PersistentFlags().Bool("gc-log", false, "log collector activity to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
