// Command yl is the one-binary REPL/runner described in §6: no
// arguments drops into an interactive shell, one argument runs a
// script file, and the process exit code reports success or the kind
// of failure (compile error, runtime error, I/O error, usage error).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/yl-lang/yl/ascii"
	yl "github.com/yl-lang/yl"
	"github.com/yl-lang/yl/internal/gcstats"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
	exitUsageError   = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("yl", flag.ContinueOnError)
	dump := fs.Bool("dump", false, "print compiled bytecode before executing")
	gcStress := fs.Bool("gc-stress", false, "collect garbage on every allocation")
	gcStats := fs.Bool("gc-stats", false, "print heap statistics on exit")
	version := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(argv); err != nil {
		return exitUsageError
	}

	if *version {
		fmt.Println("yl 0.1.0")
		return exitOK
	}

	args := fs.Args()
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: yl [flags] [script]")
		return exitUsageError
	}

	cfg := yl.NewConfig()
	cfg.GCStress = *gcStress
	cfg.GCStats = *gcStats
	cfg.DumpBytecode = *dump
	cwd, err := os.Getwd()
	if err == nil {
		cfg.ModulePaths = []string{cwd}
	}

	loader := &yl.FileModuleLoader{SearchPaths: cfg.ModulePaths}
	vm := yl.NewVM(cfg, loader)

	var code int
	if len(args) == 1 {
		code = runFile(vm, args[0])
	} else {
		code = runREPL(vm)
	}

	if *gcStats {
		s := vm.Heap.Stats()
		fmt.Fprintln(os.Stderr, gcstats.Format(gcstats.Report{
			Collections:    s.Collections,
			ObjectsFreed:   s.ObjectsFreed,
			BytesAllocated: s.BytesAllocated,
			Threshold:      s.Threshold,
		}))
	}
	return code
}

func runFile(vm *yl.VM, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yl: %s\n", err)
		return exitIOError
	}

	if vm.Config.DumpBytecode {
		fn, cerr := yl.Compile(string(src), path, vm.Classes, vm.Strings, vm.Heap)
		if cerr != nil {
			printError(cerr)
			return exitCompileError
		}
		spew.Dump(fn.Chunk.Disassemble(path))
	}

	_, err = vm.Run(string(src), path)
	if err == nil {
		return exitOK
	}
	printError(err)
	if _, ok := err.(*yl.CompileErrors); ok {
		return exitCompileError
	}
	if lerr, ok := err.(*yl.LangError); ok && lerr.Kind == yl.CompileError {
		return exitCompileError
	}
	return exitRuntimeError
}

func printError(err error) {
	if cerrs, ok := err.(*yl.CompileErrors); ok {
		for _, e := range cerrs.Errors {
			fmt.Fprintln(os.Stderr, ascii.Color(ascii.DefaultTheme.Error, "%s", e.Error()))
		}
		return
	}
	fmt.Fprintln(os.Stderr, ascii.Color(ascii.DefaultTheme.Error, "%s", err.Error()))
}
