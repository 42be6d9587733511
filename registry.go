package datacore

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/qwikbyte/datacore/internal/schema"
)

// Register wires up a repository over entity and stores it on the Core,
// keyed by the interface type R. It derives the entity's descriptor (cached
// per type), synchronizes the table when the entity is persisted, compiles
// the dispatch table, and hands the resulting Runtime to bind, whose return
// value is what callers retrieve with Get.
//
// A schema sync failure is logged and registration proceeds: the policy is
// that a repository stays usable against a partially synchronized table.
// Declaration mistakes, by contrast, fail registration outright.
// Registering the same interface twice replaces the stored instance.
func Register[R any](ctx context.Context, c *Core, entity any, methods Methods, bind func(*Runtime) R) (R, error) {
	var zero R
	rtype := reflect.TypeOf((*R)(nil)).Elem()
	repo := rtype.String()

	desc, err := c.describe(entity)
	if err != nil {
		return zero, &DeclarationError{Repo: repo, Reason: err.Error()}
	}
	if desc != nil {
		if err := c.syncTable(ctx, desc); err != nil {
			serr := &SchemaSyncError{Table: desc.Table, Err: err}
			c.log.Error("schema sync failed, continuing registration",
				zap.String("repository", repo),
				zap.String("table", desc.Table),
				zap.Error(serr))
		}
	}

	rt, err := compileMethods(c, repo, methods)
	if err != nil {
		return zero, err
	}
	impl := bind(rt)
	c.repos.Store(rtype, impl)
	c.log.Info("repository registered",
		zap.String("repository", repo),
		zap.Int("methods", len(methods)))
	return impl, nil
}

// Get returns the implementation registered for the interface type R, and
// false when nothing was registered under it.
func Get[R any](c *Core) (R, bool) {
	var zero R
	v, ok := c.repos.Load(reflect.TypeOf((*R)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return v.(R), true
}

// describe derives and caches the schema descriptor for an entity prototype.
// The cached descriptor is nil for plain structs without a TableName.
func (c *Core) describe(entity any) (*schema.Descriptor, error) {
	if entity == nil {
		return nil, fmt.Errorf("entity prototype is nil")
	}
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := c.descs.Load(t); ok {
		return cached.(*schema.Descriptor), nil
	}
	desc, err := schema.Describe(entity, c.dialect)
	if err != nil {
		return nil, err
	}
	c.descs.Store(t, desc)
	return desc, nil
}

func (c *Core) syncTable(ctx context.Context, desc *schema.Descriptor) error {
	conn, err := c.provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return schema.Sync(ctx, conn, c.dialect, c.schemaName, desc, c.log)
}
