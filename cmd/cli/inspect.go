package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"citrine/internal/common"
	"citrine/internal/engine"
	"citrine/internal/logfile"
	"citrine/internal/record"
)

// dumpLog prints every record of one generation file. A damaged tail stops
// the dump with a note, the same way recovery treats it.
func dumpLog(path string) {
	gen, ok := common.ParseLogName(filepath.Base(path))
	if !ok {
		fmt.Printf("not a generation file: %s (expected <id>.log)\n", path)
		return
	}

	s, err := logfile.OpenScanner(path, gen, engine.DefaultOptions.ReadBufferSize)
	if err != nil {
		fmt.Printf("failed to open %s: %v\n", path, err)
		return
	}
	defer s.Close()

	fmt.Printf("Dumping generation %d: %s\n", gen, path)
	fmt.Println()
	fmt.Printf("%-6s %-20s %10s  %s\n", "OP", "KEY", "SEQ", "VALUE")
	fmt.Println()

	count := 0
	for {
		rec, _, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Printf("file ends mid-frame at offset %d: %v\n", s.TailOffset(), err)
			break
		}
		count++

		key := string(rec.Key)
		if len(key) > 20 {
			key = key[:20]
		}
		if rec.Op == record.OpPut {
			fmt.Printf("%-6s %-20s %10d  %s\n", "PUT", key, rec.Seq, string(rec.Value))
		} else {
			fmt.Printf("%-6s %-20s %10d\n", "DEL", key, rec.Seq)
		}
	}

	fmt.Println()
	fmt.Printf("Total records: %d\n", count)
}
