package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// History is the REPL statement history, one compacted statement per line.
type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(stmt string) error {
	stmt = compactOneLine(stmt)
	if stmt == "" || h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, stmt); err != nil {
		return err
	}
	h.lines = append(h.lines, stmt)
	return nil
}

func (h *History) Lines() []string { return h.lines }

// Print writes the last n entries, numbered from the start of the history.
func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	for i := len(h.lines) - last; i < len(h.lines); i++ {
		_, _ = fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novakv_history"
	}
	return filepath.Join(home, ".novakv_history")
}

// compactOneLine folds a multi-line statement onto one line with single
// spaces.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
