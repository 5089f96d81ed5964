package main

import (
	"flag"
	"fmt"
	"hilal/internal/foreign"
	"hilal/internal/log"
	"hilal/internal/repl"
	"hilal/internal/runner"
	"hilal/internal/util"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// Version is set at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// pipeline
	configPath   string
	backend      string
	optimize     bool
	debugAST     bool
	debugASTJSON string
	disasm       bool
	trace        bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Configuration file (default: nearest hilal.toml)")
	flag.StringVar(&backend, "backend", util.BackendInterp, "Execution backend: interp or vm")
	flag.BoolVar(&optimize, "optimize", false, "Fold constants and prune constant branches before running")
	// debug output
	flag.BoolVar(&debugAST, "debug-ast", false, "Print the AST to stderr before running")
	flag.StringVar(&debugASTJSON, "debug-ast-json", "", "Write the AST as JSON to this file")
	flag.BoolVar(&disasm, "disasm", false, "Print the bytecode to stderr before running (vm backend)")
	flag.BoolVar(&trace, "trace", false, "Log every executed instruction at debug level (vm backend)")
	// log config
	flag.StringVar(&logLevel, "log-level", "none", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = printHelp
	flag.Parse()

	if version {
		printVersion()
		return 0
	}
	if help {
		printHelp()
		return 0
	}
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "expected at most one source file")
		printHelp()
		return 2
	}
	fileName := flag.Arg(0)

	config, err := loadConfiguration(fileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := log.Init(config.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; logging disabled\n", err)
	} else {
		defer func() {
			if err := logger.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
			}
		}()
	}
	slog.Debug("configuration", slog.String("path", config.Path), slog.String("backend", config.Backend),
		slog.Bool("optimize", config.Optimize))

	builtins := foreign.NewStd()
	if len(config.Databases) > 0 {
		sources := make(map[string]foreign.DataSource, len(config.Databases))
		for name, db := range config.Databases {
			sources[name] = foreign.DataSource{Driver: db.Driver, DSN: db.DSN}
		}
		builtins.RegisterDataSources(sources)
	}
	defer closeDatabases(foreign.CloseAll)

	opts := runner.Options{
		Backend:      config.Backend,
		Optimize:     config.Optimize,
		Builtins:     builtins,
		Out:          os.Stdout,
		DebugASTFile: debugASTJSON,
		Trace:        trace,
	}
	if config.DebugAST {
		opts.DebugAST = os.Stderr
	}
	if config.Disasm {
		opts.Disasm = os.Stderr
	}

	session, err := runner.NewSession(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if fileName == "" {
		if err := repl.Start(session, config.History); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	src, err := os.ReadFile(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", fileName, err)
		return 1
	}
	if _, err := session.Run(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, runner.FormatError(string(src), err))
		return 1
	}
	return 0
}

// closeDatabases closes the connections programs left open and reports any
// that failed to close.
func closeDatabases(closeAll func() error) {
	if err := closeAll(); err != nil {
		slog.Error("Failed to close database connections",
			slog.Any("error", err))
	}
}

// loadConfiguration reads -config or the nearest hilal.toml, then applies
// the flags that were set explicitly.
func loadConfiguration(fileName string) (util.Configuration, error) {
	var (
		config util.Configuration
		err    error
	)
	switch {
	case configPath != "":
		config, err = util.LoadConfiguration(configPath)
	case fileName != "":
		config, err = util.FindConfiguration(filepath.Dir(fileName))
	default:
		config, err = util.FindConfiguration(".")
	}
	if err != nil {
		return config, err
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			config.Backend = backend
		case "optimize":
			config.Optimize = optimize
		case "debug-ast":
			config.DebugAST = debugAST
		case "disasm":
			config.Disasm = disasm
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})
	return config, config.Validate()
}

func printVersion() {
	fmt.Printf("hilal version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: hilal [options] [filename]

Options:
  -backend <name>       Execution backend: interp (default) or vm.
  -optimize             Fold constants and prune constant branches first.
  -config <path>        Configuration file. Default is the nearest hilal.toml.
  -debug-ast            Print the AST to stderr.
  -debug-ast-json <f>   Write the AST as JSON to a file.
  -disasm               Print the compiled bytecode to stderr (vm backend).
  -trace                Log each executed instruction (vm backend, debug level).
  -log-level <level>    Log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>      Log file. Default is stderr.
  -help                 Display this help information and exit.
  -version              Display version information and exit.

Without a filename an interactive session starts.

Examples:
  hilal program.hl                  Run a program with the tree-walking interpreter
  hilal -backend=vm -disasm prog.hl Compile to bytecode, show it, and run it
  hilal -log-level=debug            Start the REPL with debug logging

Exit status is 1 when the program fails and 2 for usage errors.

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
