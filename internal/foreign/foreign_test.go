package foreign

import (
	"bytes"
	"errors"
	"hilal/internal/object"
	"os"
	"path/filepath"
	"testing"
)

func call(t *testing.T, r *Registry, name string, args ...object.Object) (object.Object, error) {
	t.Helper()
	b, ok := r.Lookup(name)
	if !ok {
		t.Fatalf("builtin %s is not registered", name)
	}
	return b.Call(&object.CallContext{Out: &bytes.Buffer{}}, args)
}

func mustCall(t *testing.T, r *Registry, name string, args ...object.Object) object.Object {
	t.Helper()
	result, err := call(t, r, name, args...)
	if err != nil {
		t.Fatalf("%s: unexpected error %v", name, err)
	}
	return result
}

func num(v float64) *object.Number { return &object.Number{Value: v} }
func str(s string) *object.String  { return &object.String{Value: s} }

func TestStdBuiltins(t *testing.T) {
	r := NewStd()
	tests := []struct {
		name     string
		args     []object.Object
		expected string
	}{
		{"str", []object.Object{num(2.5)}, "2.5"},
		{"str", []object.Object{str("x")}, "x"},
		{"num", []object.Object{str(" 42 ")}, "42"},
		{"len", []object.Object{str("سلام")}, "4"},
		{"type", []object.Object{num(1)}, "NUMBER"},
		{"upper", []object.Object{str("abc")}, "ABC"},
		{"lower", []object.Object{str("ABC")}, "abc"},
		{"trim", []object.Object{str("  hi \n")}, "hi"},
		{"index_of", []object.Object{str("héllo"), str("llo")}, "2"},
		{"index_of", []object.Object{str("abc"), str("z")}, "-1"},
		{"matches", []object.Object{str("abc123"), str(`^[a-z]+\d+$`)}, "1"},
		{"abs", []object.Object{num(-3)}, "3"},
		{"sqrt", []object.Object{num(16)}, "4"},
		{"floor", []object.Object{num(2.7)}, "2"},
		{"pow", []object.Object{num(2), num(10)}, "1024"},
		{"min", []object.Object{num(2), num(-1)}, "-1"},
		{"max", []object.Object{num(2), num(-1)}, "2"},
		{"sha256", []object.Object{str("abc")}, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		result := mustCall(t, r, tt.name, tt.args...)
		if got := result.Inspect(); got != tt.expected {
			t.Errorf("%s%v = %s, want %s", tt.name, tt.args, got, tt.expected)
		}
	}
}

func TestPrintWritesToContext(t *testing.T) {
	r := NewStd()
	b, _ := r.Lookup("print")
	var out bytes.Buffer
	result, err := b.Call(&object.CallContext{Out: &out}, []object.Object{str("a"), num(1), object.NONE})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if result != object.NONE {
		t.Errorf("print returned %s", result.Inspect())
	}
	if out.String() != "a 1 None\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestBuiltinErrors(t *testing.T) {
	r := NewStd()
	tests := []struct {
		name string
		args []object.Object
		kind error
	}{
		{"upper", []object.Object{num(1)}, object.ErrType},
		{"sqrt", []object.Object{str("x")}, object.ErrType},
		{"num", []object.Object{str("abc")}, object.ErrBuiltin},
		{"pow", []object.Object{num(1)}, object.ErrArity},
		{"matches", []object.Object{str("a"), str("(")}, object.ErrBuiltin},
		{"random_range", []object.Object{num(5), num(5)}, object.ErrBuiltin},
		{"read_file", []object.Object{str(filepath.Join(t.TempDir(), "missing"))}, object.ErrBuiltin},
		{"db_exec", []object.Object{num(999), str("select 1")}, object.ErrBuiltin},
		{"db_exec", []object.Object{num(1)}, object.ErrArity},
		{"db_close", []object.Object{num(1.5)}, object.ErrType},
	}

	for _, tt := range tests {
		_, err := call(t, r, tt.name, tt.args...)
		if !errors.Is(err, tt.kind) {
			t.Errorf("%s%v: error = %v, want %v", tt.name, tt.args, err, tt.kind)
		}
	}
}

func TestRandomRange(t *testing.T) {
	r := NewStd()
	for i := 0; i < 50; i++ {
		n := mustCall(t, r, "random_range", num(3), num(6)).(*object.Number).Value
		if n < 3 || n >= 6 || n != float64(int64(n)) {
			t.Fatalf("random_range(3, 6) = %g", n)
		}
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("HILAL_TEST_VALUE", "on")
	r := NewStd()
	if got := mustCall(t, r, "env", str("HILAL_TEST_VALUE")).Inspect(); got != "on" {
		t.Errorf("env = %s", got)
	}
	if got := mustCall(t, r, "env", str("HILAL_TEST_UNSET_VALUE")); got != object.NONE {
		t.Errorf("unset env = %s, want None", got.Inspect())
	}
}

func TestFileBuiltins(t *testing.T) {
	r := NewStd()
	path := filepath.Join(t.TempDir(), "notes.txt")

	if got := mustCall(t, r, "file_exists", str(path)).Inspect(); got != "0" {
		t.Errorf("file_exists before write = %s", got)
	}
	mustCall(t, r, "write_file", str(path), str("one\n"))
	if got := mustCall(t, r, "append_file", str(path), str("two\n")).Inspect(); got != "4" {
		t.Errorf("append_file wrote %s bytes, want 4", got)
	}
	if got := mustCall(t, r, "read_file", str(path)).Inspect(); got != "one\ntwo\n" {
		t.Errorf("read_file = %q", got)
	}
	if got := mustCall(t, r, "file_exists", str(path)).Inspect(); got != "1" {
		t.Errorf("file_exists after write = %s", got)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "one\ntwo\n" {
		t.Errorf("file on disk = %q, %v", data, err)
	}
}

func TestDatabaseBuiltins(t *testing.T) {
	r := NewStd()
	dsn := filepath.Join(t.TempDir(), "test.db")
	handle := mustCall(t, r, "db_open", str("sqlite3"), str(dsn))

	mustCall(t, r, "db_exec", handle, str("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL)"))
	affected := mustCall(t, r, "db_exec", handle, str("INSERT INTO users (name, score) VALUES (?, ?), (?, ?)"),
		str("amina"), num(9.5), str("yusuf"), num(7))
	if affected.Inspect() != "2" {
		t.Errorf("rows affected = %s, want 2", affected.Inspect())
	}

	tests := []struct {
		query    string
		args     []object.Object
		expected object.Object
	}{
		{"SELECT count(*) FROM users", nil, num(2)},
		{"SELECT name FROM users WHERE score > ?", []object.Object{num(8)}, str("amina")},
		{"SELECT score FROM users WHERE name = ?", []object.Object{str("yusuf")}, num(7)},
		{"SELECT name FROM users WHERE id = ?", []object.Object{num(42)}, object.NONE},
		{"SELECT NULL", nil, object.NONE},
	}
	for _, tt := range tests {
		args := append([]object.Object{handle, str(tt.query)}, tt.args...)
		got := mustCall(t, r, "db_scalar", args...)
		if got.Type() != tt.expected.Type() || got.Inspect() != tt.expected.Inspect() {
			t.Errorf("%s = %s (%s), want %s", tt.query, got.Inspect(), got.Type(), tt.expected.Inspect())
		}
	}

	if _, err := call(t, r, "db_exec", handle, str("INSERT INTO nowhere VALUES (1)")); !errors.Is(err, object.ErrBuiltin) {
		t.Errorf("bad statement error = %v", err)
	}

	mustCall(t, r, "db_close", handle)
	if _, err := call(t, r, "db_close", handle); !errors.Is(err, object.ErrBuiltin) {
		t.Errorf("second close error = %v, want invalid handle", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := call(t, NewStd(), "db_open", str("nosuchdriver"), str(""))
	if !errors.Is(err, object.ErrBuiltin) {
		t.Errorf("error = %v, want builtin error", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("print"); ok {
		t.Fatal("empty registry resolved print")
	}
	r.Register(&object.Builtin{Name: "zeta", Arity: 0, Fn: fnTimeClock})
	r.Register(&object.Builtin{Name: "alpha", Arity: 0, Fn: fnTimeClock})
	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("names = %v", names)
	}

	std := NewStd()
	for _, name := range []string{"print", "str", "num", "len", "upper", "lower", "abs", "sqrt", "floor", "pow",
		"min", "max", "read_file", "write_file", "append_file", "file_exists", "db_open", "db_exec", "db_scalar", "db_close"} {
		if _, ok := std.Lookup(name); !ok {
			t.Errorf("std library is missing %s", name)
		}
	}
}

func TestDataSources(t *testing.T) {
	r := NewStd()
	r.RegisterDataSources(map[string]DataSource{
		"scratch": {Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "scratch.db")},
	})

	handle := mustCall(t, r, "db_connect", str("scratch"))
	if got := mustCall(t, r, "db_scalar", handle, str("SELECT 40 + 2")).Inspect(); got != "42" {
		t.Errorf("db_scalar = %s", got)
	}
	mustCall(t, r, "db_close", handle)

	if _, err := call(t, r, "db_connect", str("missing")); !errors.Is(err, object.ErrBuiltin) {
		t.Errorf("unknown source error = %v", err)
	}
}
