package foreign

import (
	"database/sql"
	"errors"
	"fmt"
	"hilal/internal/object"
	"log/slog"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	dbConnections       = map[int64]*sql.DB{}
	dbNextID      int64 = 1
	dbMutex       sync.Mutex
)

func lookupConnection(arg object.Object, fnName string) (*sql.DB, int64, error) {
	id, err := unpackHandle(arg, fnName)
	if err != nil {
		return nil, 0, err
	}
	dbMutex.Lock()
	defer dbMutex.Unlock()
	db, ok := dbConnections[id]
	if !ok {
		return nil, id, fmt.Errorf("invalid connection handle %d", id)
	}
	return db, id, nil
}

// fnIoDbOpen connects with one of the registered drivers (sqlite3, mysql,
// postgres) and returns a connection handle.
func fnIoDbOpen(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	driver, err := unpackString(args[0], "db_open")
	if err != nil {
		return nil, err
	}
	dsn, err := unpackString(args[1], "db_open")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbMutex.Lock()
	id := dbNextID
	dbNextID++
	dbConnections[id] = db
	dbMutex.Unlock()

	slog.Debug("database opened", slog.String("driver", driver), slog.Int64("handle", id))
	return &object.Number{Value: float64(id)}, nil
}

func queryArgs(fnName string, args []object.Object) (*sql.DB, string, []interface{}, error) {
	if len(args) < 2 {
		return nil, "", nil, object.NewRuntimeError(object.ErrArity,
			"Function %s expects at least 2 arguments, got %d", fnName, len(args))
	}
	db, _, err := lookupConnection(args[0], fnName)
	if err != nil {
		return nil, "", nil, err
	}
	query, err := unpackString(args[1], fnName)
	if err != nil {
		return nil, "", nil, err
	}

	params := make([]interface{}, len(args)-2)
	for i := 2; i < len(args); i++ {
		params[i-2] = ToNative(args[i])
	}
	return db, query, params, nil
}

// fnIoDbExec runs a statement and returns the number of affected rows.
func fnIoDbExec(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	db, query, params, err := queryArgs("db_exec", args)
	if err != nil {
		return nil, err
	}

	result, err := db.Exec(query, params...)
	if err != nil {
		return nil, fmt.Errorf("exec failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return object.NONE, nil
	}
	return &object.Number{Value: float64(affected)}, nil
}

// fnIoDbScalar returns the first column of the first row, or None when the
// query yields no rows.
func fnIoDbScalar(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	db, query, params, err := queryArgs("db_scalar", args)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return object.NONE, rows.Err()
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(values) == 0 {
		return object.NONE, nil
	}
	return mapValue(values[0]), nil
}

func fnIoDbClose(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	db, id, err := lookupConnection(args[0], "db_close")
	if err != nil {
		return nil, err
	}
	dbMutex.Lock()
	delete(dbConnections, id)
	dbMutex.Unlock()
	return object.NONE, db.Close()
}

// CloseAll closes every connection still open, for use at shutdown.
func CloseAll() error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	var errs []error
	for id, db := range dbConnections {
		errs = append(errs, db.Close())
		delete(dbConnections, id)
	}
	return errors.Join(errs...)
}

func mapValue(v interface{}) object.Object {
	switch x := v.(type) {
	case nil:
		return object.NONE
	case int64:
		return &object.Number{Value: float64(x)}
	case float64:
		return &object.Number{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		return boolToNumber(x)
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}

type DataSource struct {
	Driver string
	DSN    string
}

// RegisterDataSources adds db_connect(name), which opens one of the named
// sources the way db_open would.
func (r *Registry) RegisterDataSources(sources map[string]DataSource) {
	r.Register(&object.Builtin{
		Name:  "db_connect",
		Arity: 1,
		Fn: func(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
			name, err := unpackString(args[0], "db_connect")
			if err != nil {
				return nil, err
			}
			src, ok := sources[name]
			if !ok {
				return nil, fmt.Errorf("no data source named %q", name)
			}
			return fnIoDbOpen(ctx, &object.String{Value: src.Driver}, &object.String{Value: src.DSN})
		},
	})
}
