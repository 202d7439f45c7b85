package main

import (
	"flag"
	"fmt"
	"os"

	"citrine/internal/common"
	"citrine/internal/engine"
)

func main() {
	dir := flag.String("dir", "data", "store directory")
	genMB := flag.Int("genmb", 64, "max generation file size (MB)")
	syncEvery := flag.Int("sync", 0, "fsync after every N writes (0 leaves it to close)")
	verbose := flag.Bool("v", false, "log engine activity")
	flag.Parse()

	common.LoggingEnabled = *verbose

	e, err := engine.Open(*dir,
		engine.WithMaxGenerationBytes(int64(*genMB)<<20),
		engine.WithSyncEvery(*syncEvery),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}

	// With arguments run a single command, otherwise start the repl.
	if args := flag.Args(); len(args) > 0 {
		c := newCLI(e, nil)
		_, code := c.run(args)
		if err := e.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close error: %v\n", err)
			if code == 0 {
				code = 1
			}
		}
		os.Exit(code)
	}

	fmt.Println("citrine - log-structured key-value store")
	fmt.Printf("config: dir=%s max_generation=%dMB sync_every=%d\n", *dir, *genMB, *syncEvery)
	fmt.Println("commands: " + commandSummary)

	runREPL(e)

	if err := e.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close error: %v\n", err)
		os.Exit(1)
	}
}
