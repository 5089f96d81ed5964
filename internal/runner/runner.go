package runner

import (
	"fmt"
	"hilal/internal/ast"
	"hilal/internal/compiler"
	"hilal/internal/evaluator"
	"hilal/internal/lexer"
	"hilal/internal/object"
	"hilal/internal/optimizer"
	"hilal/internal/parser"
	"hilal/internal/util"
	"hilal/internal/vm"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type Options struct {
	Backend  string
	Optimize bool

	// Builtins resolves names the program does not define. Nil means none.
	Builtins object.Builtins

	// Out receives program output. Nil means os.Stdout.
	Out io.Writer

	// DebugAST, when set, receives the indented text rendering of every
	// parsed input. DebugASTFile names a file for the JSON rendering.
	DebugAST     io.Writer
	DebugASTFile string

	// Disasm, when set, receives the disassembly of every compiled input.
	Disasm io.Writer

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// Session runs successive inputs against the same state, so definitions
// from one input are visible to the next. Both backends keep their state
// for the life of the session.
type Session struct {
	opts Options

	// host holds bindings made by the embedding program; env, the
	// interpreter's top level, is its child so definitions shadow them
	host      *object.Environment
	env       *object.Environment
	evaluator *evaluator.Evaluator
	compiler  *compiler.Compiler
	machine   *vm.VM
}

func NewSession(opts Options) (*Session, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Backend == "" {
		opts.Backend = util.BackendInterp
	}
	host := object.NewEnvironment()
	s := &Session{
		opts:      opts,
		host:      host,
		env:       object.NewEnclosedEnvironment(host),
		evaluator: evaluator.New(opts.Builtins, opts.Out),
		compiler:  compiler.New(opts.Builtins),
		machine:   vm.New(opts.Out),
	}
	s.machine.Trace = opts.Trace
	s.compiler.SetGlobals(s.machine.Globals)
	if err := s.SetBackend(opts.Backend); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes src with a fresh session.
func Run(src string, opts Options) (object.Object, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.Run(src)
}

func (s *Session) Backend() string {
	return s.opts.Backend
}

// SetBackend switches the backend for later inputs. The two backends do not
// share definitions.
func (s *Session) SetBackend(backend string) error {
	switch backend {
	case util.BackendInterp, util.BackendVM:
		s.opts.Backend = backend
		return nil
	}
	return fmt.Errorf("unknown backend %q, want %s or %s", backend, util.BackendInterp, util.BackendVM)
}

// SetGlobal binds name for programs run on either backend.
func (s *Session) SetGlobal(name string, val object.Object) {
	s.host.Set(name, val)
	s.machine.Globals[name] = val
}

// Env is the interpreter's top-level environment.
func (s *Session) Env() *object.Environment {
	return s.env
}

// Globals is the VM's top-level name table.
func (s *Session) Globals() map[string]object.Object {
	return s.machine.Globals
}

// Run lexes, parses and executes src, returning the value of its last
// statement. With the vm backend this is the top of the operand stack.
func (s *Session) Run(src string) (object.Object, error) {
	runID := uuid.New().String()
	logger := slog.With(slog.String("run", runID), slog.String("backend", s.opts.Backend))

	program, err := s.parse(src, logger)
	if err != nil {
		return nil, err
	}

	var result object.Object
	switch s.opts.Backend {
	case util.BackendVM:
		result, err = s.runVM(program, logger)
	default:
		result, err = s.evaluator.Eval(program, s.env)
	}
	if err != nil {
		logger.Debug("run failed", slog.Any("error", err))
		return nil, err
	}

	logger.Debug("run finished", slog.String("result", result.Inspect()))
	return result, nil
}

func (s *Session) parse(src string, logger *slog.Logger) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	logger.Debug("lexed", slog.Int("tokens", len(tokens)))

	program, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed", slog.Int("statements", len(program.Statements)))

	if s.opts.Optimize {
		o := optimizer.New()
		program = o.Optimize(program)
		logger.Debug("optimized", slog.Any("rewrites", o.Rewrites()))
	}

	if s.opts.DebugAST != nil {
		fmt.Fprintln(s.opts.DebugAST, parser.RenderASTAsText(program, 0))
	}
	if s.opts.DebugASTFile != "" {
		if err := parser.WriteASTToJSON(program, s.opts.DebugASTFile); err != nil {
			return nil, fmt.Errorf("failed to write AST: %w", err)
		}
	}
	return program, nil
}

func (s *Session) runVM(program *ast.Program, logger *slog.Logger) (object.Object, error) {
	bc, err := s.compiler.Compile(program)
	if err != nil {
		return nil, err
	}
	if s.opts.Disasm != nil {
		fmt.Fprint(s.opts.Disasm, bc.Disassemble())
	}
	logger.Debug("compiled", slog.Int("instructions", len(bc.Instructions)), slog.Int("constants", len(bc.Constants)))

	if err := s.machine.Run(bc); err != nil {
		return nil, err
	}
	return s.machine.Result(), nil
}
