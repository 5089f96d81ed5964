package repl

import (
	"errors"
	"fmt"
	"hilal/internal/object"
	"hilal/internal/parser"
	"hilal/internal/runner"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	PROMPT      = ">> "
	CONT_PROMPT = ".. "
	HistoryFile = ".hilal_history"
)

const helpText = `REPL commands:
  :backend interp|vm   Switch the execution backend
  :backend             Show the current backend
  :help                Show this help
  :quit                Exit the REPL
A line ending in ':' starts a block; finish it with an empty line.
`

// LineReader is the part of liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Repl struct {
	Session *runner.Session
	In      LineReader
	Out     io.Writer
	Err     io.Writer
}

// Start runs an interactive session on the terminal, keeping history in
// historyPath (or ~/.hilal_history when empty).
func Start(session *runner.Session, historyPath string) error {
	if historyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		historyPath = filepath.Join(home, HistoryFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "hilal REPL (%s backend). Ctrl+D exits, :help lists commands.\n", session.Backend())
	r := &Repl{Session: session, In: ln, Out: os.Stdout, Err: os.Stderr}
	r.Loop()
	return nil
}

// Loop reads and runs inputs until end of input or :quit.
func (r *Repl) Loop() {
	for {
		src, ok := r.readInput()
		if !ok {
			fmt.Fprintln(r.Out)
			return
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if r.command(trimmed) {
				return
			}
			continue
		}

		r.In.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		result, err := r.Session.Run(src)
		if err != nil {
			fmt.Fprintln(r.Err, runner.FormatError(src, err))
			continue
		}
		if result != object.NONE {
			fmt.Fprintln(r.Out, result.Inspect())
		}
	}
}

// command handles a :command and reports whether the loop should stop.
func (r *Repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(r.Out, helpText)
	case ":backend":
		if len(fields) == 1 {
			fmt.Fprintln(r.Out, r.Session.Backend())
			return false
		}
		if err := r.Session.SetBackend(fields[1]); err != nil {
			fmt.Fprintln(r.Err, err)
			return false
		}
		fmt.Fprintf(r.Out, "backend: %s\n", r.Session.Backend())
	default:
		fmt.Fprintf(r.Err, "unknown command %s. Type :help for a list.\n", fields[0])
	}
	return false
}

// readInput collects one input. A line ending in ':' opens a block that an
// empty line closes; otherwise reading continues while the parser reports
// incomplete input.
func (r *Repl) readInput() (string, bool) {
	var b strings.Builder
	block := false

	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := r.In.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, ":") {
			block = true
		}
		if block {
			continue
		}

		src := b.String()
		if _, err := parser.ParseSource(src); errors.Is(err, parser.ErrIncomplete) {
			continue
		}
		return src, true
	}
}
