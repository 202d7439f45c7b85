package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/peterh/liner"

	"citrine/internal/engine"
)

func runREPL(e *engine.Engine) {
	prompt := liner.NewLiner()
	defer prompt.Close()
	prompt.SetCtrlCAborts(true)

	hist, err := newHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
	} else {
		for _, cmd := range hist.list(0) {
			prompt.AppendHistory(cmd)
		}
	}

	c := newCLI(e, hist)
	for {
		input, err := prompt.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "input error: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if hist != nil {
			hist.add(input)
			prompt.AppendHistory(input)
		}

		args, err := shellquote.Split(input)
		if err != nil {
			fmt.Printf("parse error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		quit, _ := c.run(args)
		if quit {
			break
		}
	}

	if hist != nil {
		if err := hist.save(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save history: %v\n", err)
		}
	}
}
