package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lox/internal/source"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long:  `Read one line at a time and execute each as a script; globals and the heap persist across lines`,
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	in := newInterpreter(cfg)

	// One heap and one VM for the whole session: definitions from
	// earlier lines stay visible, and errors only abort their line.
	sc := bufio.NewScanner(os.Stdin)
	line := 0
	for {
		fmt.Print(cfg.REPL.Prompt)
		if !sc.Scan() {
			fmt.Println()
			return sc.Err()
		}
		line++
		file := source.NewFile(fmt.Sprintf("<repl:%d>", line), []byte(sc.Text()))
		in.interpret(file)
	}
}
