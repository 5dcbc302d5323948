package main

import (
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"

	"github.com/yl-lang/yl/ascii"
	yl "github.com/yl-lang/yl"
)

// runREPL implements §6's interactive mode: read a line, compile and
// execute it as its own top-level module, print runtime errors and
// keep going, exit 0 on EOF.
func runREPL(vm *yl.VM) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	prompt := ascii.Color(ascii.DefaultTheme.Accent, "> ")
	for i := 0; ; i++ {
		text, err := line.Prompt(prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "yl:", err)
			break
		}
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		path := fmt.Sprintf("<repl:%d>", i)
		_, runErr := vm.Run(text, path)
		if runErr != nil {
			printError(runErr)
		}
	}

	if f, err := os.Create(histPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return exitOK
}

func historyPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".yl_history"
	}
	return dir + "/.yl_history"
}
