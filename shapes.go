package datacore

import (
	"context"

	"github.com/qwikbyte/datacore/internal/db"
)

// All runs a registered method and materializes every result row into a
// slice, in driver order. An empty result yields a nil slice and no error.
func All[T any](ctx context.Context, rt *Runtime, method string, args ...any) ([]T, error) {
	m, err := rt.lookup(method)
	if err != nil {
		return nil, err
	}
	var out []T
	err = rt.run(ctx, m, args, func(rows db.Rows) error {
		var cerr error
		out, cerr = collectRows[T](rows)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First runs a registered method and materializes the first result row; ok
// reports whether a row existed. When the query matches more than one row
// the first of driver order wins and the rest are discarded.
func First[T any](ctx context.Context, rt *Runtime, method string, args ...any) (T, bool, error) {
	var (
		zero T
		out  T
		ok   bool
	)
	m, err := rt.lookup(method)
	if err != nil {
		return zero, false, err
	}
	err = rt.run(ctx, m, args, func(rows db.Rows) error {
		var cerr error
		out, ok, cerr = firstRow[T](rows)
		return cerr
	})
	if err != nil {
		return zero, false, err
	}
	return out, ok, nil
}

// One is the pointer-shaped variant of First: nil without error when the
// result is empty, otherwise a pointer to the first row.
func One[T any](ctx context.Context, rt *Runtime, method string, args ...any) (*T, error) {
	out, ok, err := First[T](ctx, rt, method, args...)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// Exec runs a registered method as a statement and returns the number of
// rows it affected. INSERT, UPDATE and DELETE templates belong here; use
// All, First or One for anything that produces rows.
func Exec(ctx context.Context, rt *Runtime, method string, args ...any) (int64, error) {
	m, err := rt.lookup(method)
	if err != nil {
		return 0, err
	}
	return rt.exec(ctx, m, args)
}
