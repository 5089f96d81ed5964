package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
)

const (
	LevelTrace = slog.Level(-8)
	LevelNone  = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelNone:  "NONE",
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// New builds a logger writing to w. Terminals get the text handler,
// everything else gets JSON.
func New(level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						a.Value = slog.StringValue(name)
					}
				}
			}
			return a
		},
	}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Logger owns the log file, if any, behind the default slog logger.
type Logger struct {
	*slog.Logger
	file *fileWriter
	sigs chan os.Signal
}

// Init installs the default slog logger. An empty path logs to stderr.
func Init(logLevel string, logFile string) (*Logger, error) {
	l := &Logger{}
	var out io.Writer = os.Stderr

	if logFile != "" {
		fw, err := openFileWriter(logFile)
		if err != nil {
			return nil, err
		}
		l.file = fw
		out = fw
		l.setupLogRotation()
	}

	l.Logger = New(ParseLevel(logLevel), out)
	slog.SetDefault(l.Logger)
	return l, nil
}

func (l *Logger) setupLogRotation() {
	/*
	 * when logging to a file, reopen it on SIGHUP so it can be rotated:
	 * mv hilal.log hilal.bak && kill -HUP <pid>
	 */
	l.sigs = make(chan os.Signal, 1)
	signal.Notify(l.sigs, syscall.SIGHUP)
	go func() {
		for range l.sigs {
			if err := l.file.reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}

func (l *Logger) Close() error {
	if l.sigs != nil {
		signal.Stop(l.sigs)
		close(l.sigs)
		l.sigs = nil
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type fileWriter struct {
	mu   sync.Mutex
	path string
	fh   *os.File
}

func openFileWriter(path string) (*fileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	fw := &fileWriter{path: path}
	if err := fw.reopen(); err != nil {
		return nil, err
	}
	return fw, nil
}

func (fw *fileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.fh.Write(p)
}

func (fw *fileWriter) reopen() error {
	fh, err := os.OpenFile(fw.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", fw.path, err)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.fh != nil {
		fw.fh.Close()
	}
	fw.fh = fh
	return nil
}

func (fw *fileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.fh.Close()
}
