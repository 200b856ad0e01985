package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lox/internal/compiler"
	"lox/internal/config"
	"lox/internal/diag"
	"lox/internal/source"
	"lox/internal/vm"
)

const maxDiagnostics = 100

// interpreter bundles a heap and VM with the effective options, so the
// REPL can feed many scripts into one persistent machine.
type interpreter struct {
	cfg     config.Config
	heap    *vm.Heap
	machine *vm.VM
}

// effectiveConfig loads lox.toml and overlays any explicitly set flags.
func effectiveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return cfg, err
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("trace") {
		cfg.VM.Trace, _ = flags.GetBool("trace")
	}
	if flags.Changed("print-code") {
		cfg.VM.PrintCode, _ = flags.GetBool("print-code")
	}
	if flags.Changed("gc-stress") {
		cfg.GC.Stress, _ = flags.GetBool("gc-stress")
	}
	if flags.Changed("gc-log") {
		cfg.GC.Log, _ = flags.GetBool("gc-log")
	}
	return cfg, nil
}

func newInterpreter(cfg config.Config) *interpreter {
	heap := vm.NewHeap(vm.HeapOptions{
		Stress:       cfg.GC.Stress,
		Log:          cfg.GC.Log,
		LogW:         os.Stderr,
		GrowthFactor: cfg.GC.GrowthFactor,
		NextGC:       cfg.GC.Next,
	})
	machine := vm.NewVM(heap, vm.Options{
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Trace:             cfg.VM.Trace,
		StackTraceOnError: cfg.VM.StackTraceOnError,
	})
	return &interpreter{cfg: cfg, heap: heap, machine: machine}
}

// compile compiles one source file, rendering diagnostics to
// stderr on failure.
func (in *interpreter) compile(file *source.File) (*vm.ObjFunction, bool) {
	bag := diag.NewBag(maxDiagnostics)
	fn := compiler.Compile(file, in.heap, bag)
	if bag.Len() > 0 {
		diag.Render(os.Stderr, bag, isTerminal(os.Stderr))
	}
	if fn == nil {
		return nil, false
	}
	if in.cfg.VM.PrintCode {
		vm.DisassembleFunction(os.Stderr, fn)
	}
	return fn, true
}

// interpret compiles and runs file, mapping the outcome to an exit code.
func (in *interpreter) interpret(file *source.File) int {
	fn, ok := in.compile(file)
	if !ok {
		return exitCompile
	}
	if err := in.machine.Run(fn); err != nil {
		return exitRuntime
	}
	return 0
}

// runScript is the shared path for run and the bare-file form.
func runScript(cmd *cobra.Command, path string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	file, err := source.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	if code := newInterpreter(cfg).interpret(file); code != 0 {
		os.Exit(code)
	}
	return nil
}
