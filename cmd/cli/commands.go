package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"citrine/internal/engine"
)

const commandSummary = "set <key> <value> | get <key> | rm <key> | keys | stats | " +
	"seed <x> | compact | sync | inspect <file.log> | history [n] | help | exit"

type cli struct {
	engine    *engine.Engine
	hist      *History
	seedIndex int
}

func newCLI(e *engine.Engine, hist *History) *cli {
	return &cli{
		engine:    e,
		hist:      hist,
		seedIndex: loadSeedIndex(e),
	}
}

// run executes one parsed command line. quit is true when the session should
// end; code is the process exit status for one-shot use.
func (c *cli) run(args []string) (quit bool, code int) {
	switch strings.ToLower(args[0]) {
	case "set", "put":
		if len(args) != 3 {
			fmt.Println("usage: set <key> <value>")
			return false, 1
		}
		if err := c.engine.Put([]byte(args[1]), []byte(args[2])); err != nil {
			fmt.Printf("set error: %v\n", err)
			return false, 1
		}
		fmt.Println("ok")

	case "get":
		if len(args) != 2 {
			fmt.Println("usage: get <key>")
			return false, 1
		}
		value, err := c.engine.Get([]byte(args[1]))
		if errors.Is(err, engine.ErrKeyNotFound) {
			// An absent key is an answer, not a failure.
			fmt.Println("Key not found")
			return false, 0
		}
		if err != nil {
			fmt.Printf("get error: %v\n", err)
			return false, 1
		}
		fmt.Printf("%s\n", value)

	case "rm", "del", "delete":
		if len(args) != 2 {
			fmt.Println("usage: rm <key>")
			return false, 1
		}
		if _, err := c.engine.Get([]byte(args[1])); errors.Is(err, engine.ErrKeyNotFound) {
			fmt.Fprintln(os.Stderr, "Key not found")
			return false, 1
		}
		if err := c.engine.Delete([]byte(args[1])); err != nil {
			fmt.Printf("rm error: %v\n", err)
			return false, 1
		}
		fmt.Println("ok")

	case "keys":
		keys, err := c.engine.Keys()
		if err != nil {
			fmt.Printf("keys error: %v\n", err)
			return false, 1
		}
		for _, key := range keys {
			fmt.Printf("%s\n", key)
		}

	case "stats":
		st := c.engine.Stats()
		fmt.Printf("keys:        %d\n", st.Keys)
		fmt.Printf("generations: %d (active %d)\n", st.Generations, st.ActiveGeneration)
		fmt.Printf("total bytes: %d\n", st.TotalBytes)
		fmt.Printf("stale bytes: %d\n", st.StaleBytes)
		fmt.Printf("last seq:    %d\n", st.LastSeq)

	case "seed":
		if len(args) != 2 {
			fmt.Println("usage: seed <x>")
			return false, 1
		}
		x, err := strconv.Atoi(args[1])
		if err != nil || x < 1 {
			fmt.Println("seed: x must be a positive integer")
			return false, 1
		}
		runSeed(c.engine, x, &c.seedIndex)

	case "compact":
		report, err := c.engine.Compact()
		if err != nil {
			fmt.Printf("compact error: %v\n", err)
			return false, 1
		}
		if report.Retired == 0 {
			fmt.Println("nothing to compact")
			return false, 0
		}
		fmt.Printf("retired %d generations into %d: kept %d records, reclaimed %d bytes in %v\n",
			report.Retired, report.Output, report.RecordsCopied, report.BytesReclaimed, report.Elapsed)

	case "sync":
		if err := c.engine.Sync(); err != nil {
			fmt.Printf("sync error: %v\n", err)
			return false, 1
		}
		fmt.Println("ok")

	case "inspect":
		if len(args) != 2 {
			fmt.Println("usage: inspect <file.log>")
			return false, 1
		}
		dumpLog(args[1])

	case "history":
		if c.hist == nil {
			fmt.Println("history is only recorded in the repl")
			return false, 1
		}
		n := 0
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				fmt.Println("usage: history [n]")
				return false, 1
			}
			n = v
		}
		for _, cmd := range c.hist.list(n) {
			fmt.Println(cmd)
		}

	case "help":
		fmt.Println("commands: " + commandSummary)

	case "exit", "quit":
		return true, 0

	default:
		fmt.Println("unknown command")
		return false, 1
	}
	return false, 0
}
