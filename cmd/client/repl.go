package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novakv/sqlclient"
)

const (
	prompt         = "novakv> "
	continuePrompt = "...> "
)

const helpText = `meta commands:
  \q | quit | exit       quit
  \history               print history
  \help                  show help

sql:
  INSERT INTO <table> [(cols)] VALUES (...);
  SELECT * | <cols> FROM <table>;
  end statement with ';'
  multiline is supported (CLI will wait until ';')`

// statementComplete checks if we have a terminating ';' outside quotes.
func statementComplete(buf string) bool {
	var quote rune
	escaped := false

	for _, r := range buf {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case ';':
			return true
		}
	}
	return false
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") ||
		line == "quit" || line == "exit"
}

var errQuit = errors.New("quit")

// runMeta handles a meta command. It returns errQuit to leave the REPL.
func runMeta(w io.Writer, h *History, line string) error {
	switch strings.TrimSpace(line) {
	case "\\q", "quit", "exit":
		return errQuit
	case "\\help":
		_, _ = fmt.Fprintln(w, helpText)
	case "\\history":
		h.Print(w, 50)
	default:
		_, _ = fmt.Fprintf(w, "unknown command: %s\n", line)
	}
	return nil
}

type replConfig struct {
	histPath string
	histMax  int
	format   string
}

func runREPL(ctx context.Context, cli *sqlclient.Client, out io.Writer, rc replConfig) error {
	h := NewHistory(rc.histPath)
	_ = h.Load(rc.histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// preload history so the up arrow works immediately
	for _, line := range h.Lines() {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder

	_, _ = fmt.Fprintf(out, "connected to %s\n", cli.RemoteAddr())
	_, _ = fmt.Fprintln(out, "type \\help for help")

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C clears the current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			_, _ = fmt.Fprintln(out, "^C")
			continue
		}
		if err != nil {
			_, _ = fmt.Fprintln(out)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if runMeta(out, h, line) == errQuit {
				return nil
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt(continuePrompt)
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		res, err := cli.ExecContext(ctx, stmt)
		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err := renderResult(out, res, rc.format); err != nil {
			return err
		}
	}
}
