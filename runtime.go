package datacore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/query"
)

// MethodSpec declares one repository method: a SQL template with :name
// placeholders and the formal parameter names in the order the adapter
// passes arguments. Parameter names must be spelled out because reflection
// cannot recover them from a function signature.
type MethodSpec struct {
	Query  string
	Params []string
}

// Methods is one repository's dispatch table, keyed by method name.
type Methods map[string]MethodSpec

// method is a compiled dispatch entry.
type method struct {
	name   string
	tpl    *query.Template
	params []string
}

// Runtime executes the compiled methods of one registered repository. It is
// immutable after registration and safe for concurrent use; the adapter
// returned by Register holds one and routes its interface methods through
// All, First, One and Exec.
type Runtime struct {
	core    *Core
	repo    string
	methods map[string]*method
}

// compileMethods validates the dispatch table and parses every template.
// Declaration mistakes fail registration outright; a template placeholder
// with no declared parameter is legal (it binds NULL) and is only logged.
func compileMethods(core *Core, repo string, specs Methods) (*Runtime, error) {
	rt := &Runtime{core: core, repo: repo, methods: make(map[string]*method, len(specs))}
	for name, spec := range specs {
		if strings.TrimSpace(spec.Query) == "" {
			return nil, &DeclarationError{Repo: repo, Method: name, Reason: "empty query template"}
		}
		seen := make(map[string]struct{}, len(spec.Params))
		for _, p := range spec.Params {
			if _, dup := seen[p]; dup {
				return nil, &DeclarationError{Repo: repo, Method: name, Reason: fmt.Sprintf("parameter %q declared twice", p)}
			}
			seen[p] = struct{}{}
		}
		tpl := query.Parse(spec.Query, core.dialect.Placeholder())
		if unbound := tpl.Unbound(spec.Params); len(unbound) > 0 {
			core.log.Debug("template placeholders without declared parameters bind NULL",
				zap.String("repository", repo),
				zap.String("method", name),
				zap.Strings("placeholders", unbound))
		}
		rt.methods[name] = &method{name: name, tpl: tpl, params: spec.Params}
	}
	return rt, nil
}

func (rt *Runtime) lookup(name string) (*method, error) {
	m, ok := rt.methods[name]
	if !ok {
		return nil, &DeclarationError{Repo: rt.repo, Method: name, Reason: "no query template registered"}
	}
	return m, nil
}

// bind zips the declared parameter names with the call arguments and renders
// the positional bind values. Serialization failures pass through untouched
// so callers can distinguish a bad value from a bad connection.
func (rt *Runtime) bind(m *method, args []any) ([]any, error) {
	if len(args) != len(m.params) {
		return nil, &DeclarationError{
			Repo:   rt.repo,
			Method: m.name,
			Reason: fmt.Sprintf("got %d arguments, declared %d parameters", len(args), len(m.params)),
		}
	}
	named := make(map[string]any, len(args))
	for i, p := range m.params {
		named[p] = args[i]
	}
	return query.BindArgs(m.tpl.Names, named)
}

// run binds args, acquires a connection, executes m and hands the rows to
// consume. The rows and the connection are released on every exit path.
func (rt *Runtime) run(ctx context.Context, m *method, args []any, consume func(db.Rows) error) error {
	binds, err := rt.bind(m, args)
	if err != nil {
		return err
	}
	conn, err := rt.core.provider.Acquire(ctx)
	if err != nil {
		return &ExecutionError{Method: rt.repo + "." + m.name, Err: err}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, m.tpl.Statement, binds...)
	if err != nil {
		return &ExecutionError{Method: rt.repo + "." + m.name, Err: err}
	}
	defer rows.Close()

	if err := consume(rows); err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			return err
		}
		return &ExecutionError{Method: rt.repo + "." + m.name, Err: err}
	}
	return nil
}

// exec binds args and executes m as a statement, returning the affected-row
// count reported by the driver.
func (rt *Runtime) exec(ctx context.Context, m *method, args []any) (int64, error) {
	binds, err := rt.bind(m, args)
	if err != nil {
		return 0, err
	}
	conn, err := rt.core.provider.Acquire(ctx)
	if err != nil {
		return 0, &ExecutionError{Method: rt.repo + "." + m.name, Err: err}
	}
	defer conn.Release()

	n, err := conn.Exec(ctx, m.tpl.Statement, binds...)
	if err != nil {
		return 0, &ExecutionError{Method: rt.repo + "." + m.name, Err: err}
	}
	return n, nil
}
