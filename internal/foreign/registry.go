package foreign

import (
	"hilal/internal/object"
	"log/slog"
	"sort"
	"sync"
)

// Registry maps call names to host functions. It satisfies
// object.Builtins, so both backends resolve unknown call names through it.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]*object.Builtin
}

func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]*object.Builtin)}
}

// NewStd returns a registry holding the standard library.
func NewStd() *Registry {
	r := NewRegistry()
	for _, b := range GetBuiltins() {
		r.Register(b)
	}
	slog.Debug("builtins registered", slog.Int("count", len(r.builtins)))
	return r
}

// Register adds b, replacing any builtin of the same name.
func (r *Registry) Register(b *object.Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[b.Name] = b
}

func (r *Registry) Lookup(name string) (*object.Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builtins[name]
	return b, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetBuiltins() []*object.Builtin {
	return []*object.Builtin{
		{Name: "print", Arity: -1, Fn: fnStdPrint},
		{Name: "str", Arity: 1, Fn: fnStdStr},
		{Name: "num", Arity: 1, Fn: fnStdNum},
		{Name: "len", Arity: 1, Fn: fnStdLen},
		{Name: "type", Arity: 1, Fn: fnStdType},

		// string functions
		{Name: "upper", Arity: 1, Fn: fnStringToUpper},
		{Name: "lower", Arity: 1, Fn: fnStringToLower},
		{Name: "trim", Arity: 1, Fn: fnStringTrim},
		{Name: "index_of", Arity: 2, Fn: fnStringIndexOf},
		{Name: "matches", Arity: 2, Fn: fnStringMatches},

		{Name: "abs", Arity: 1, Fn: fnMathAbs},
		{Name: "sqrt", Arity: 1, Fn: fnMathSqrt},
		{Name: "floor", Arity: 1, Fn: fnMathFloor},
		{Name: "pow", Arity: 2, Fn: fnMathPow},
		{Name: "min", Arity: 2, Fn: fnMathMin},
		{Name: "max", Arity: 2, Fn: fnMathMax},
		{Name: "random_range", Arity: 2, Fn: fnMathRndRange},

		{Name: "sha256", Arity: 1, Fn: fnCryptoSha256},
		{Name: "env", Arity: 1, Fn: fnSysEnv},
		{Name: "clock", Arity: 0, Fn: fnTimeClock},

		{Name: "read_file", Arity: 1, Fn: fnIoFsReadFile},
		{Name: "write_file", Arity: 2, Fn: fnIoFsWriteFile},
		{Name: "append_file", Arity: 2, Fn: fnIoFsAppendFile},
		{Name: "file_exists", Arity: 1, Fn: fnIoFsExists},

		{Name: "db_open", Arity: 2, Fn: fnIoDbOpen},
		{Name: "db_exec", Arity: -1, Fn: fnIoDbExec},
		{Name: "db_scalar", Arity: -1, Fn: fnIoDbScalar},
		{Name: "db_close", Arity: 1, Fn: fnIoDbClose},
	}
}
