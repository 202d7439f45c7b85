package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxHistorySize = 1000

// History remembers repl commands across sessions in ~/.citrine_history,
// one command per line.
type History struct {
	entries []string
	file    string
}

func newHistory() (*History, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	h := &History{
		entries: make([]string, 0, maxHistorySize),
		file:    filepath.Join(home, ".citrine_history"),
	}
	if err := h.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return h, nil
}

func (h *History) load() error {
	f, err := os.Open(h.file)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			h.entries = append(h.entries, line)
		}
	}
	return scanner.Err()
}

func (h *History) add(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	// Skip immediate repeats.
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == cmd {
		return
	}

	h.entries = append(h.entries, cmd)
	if len(h.entries) > maxHistorySize {
		h.entries = h.entries[len(h.entries)-maxHistorySize:]
	}
}

func (h *History) save() error {
	f, err := os.Create(h.file)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, cmd := range h.entries {
		if _, err := fmt.Fprintln(f, cmd); err != nil {
			return err
		}
	}
	return nil
}

// list returns the last n entries, or all of them when n is zero or out of
// range.
func (h *History) list(n int) []string {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	return h.entries[len(h.entries)-n:]
}
