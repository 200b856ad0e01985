package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lox/internal/scanner"
	"lox/internal/source"
	"lox/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file.lox>",
	Short: "Tokenize a Lox source file",
	Long:  `Tokenize breaks a Lox source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(_ *cobra.Command, args []string) error {
	file, err := source.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	sc := scanner.New(file)
	lastLine := 0
	for {
		tok := sc.Next()
		if tok.Line != lastLine {
			fmt.Printf("%4d ", tok.Line)
			lastLine = tok.Line
		} else {
			fmt.Print("   | ")
		}
		fmt.Printf("%-10s '%s'\n", tok.Kind, tok.Text)
		if tok.Kind == token.EOF {
			return nil
		}
	}
}
