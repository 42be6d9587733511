package datacore

import "github.com/qwikbyte/datacore/internal/typemap"

// Entity marks a struct type as persisted: TableName names the relation the
// type maps to. Column metadata rides on `db` struct tags:
//
//	type Player struct {
//		ID    int64    `db:"id,pk,auto"`
//		Name  string   `db:"name,notnull"`
//		Token string   `db:"token,uuid"`
//		Tags  []string `db:"tags"`
//	}
//
//	func (Player) TableName() string { return "players" }
//
// Tag grammar is `db:"name[,option...]"`. An empty name falls back to the
// lowercased field name, and `db:"-"` excludes the field entirely. Options:
//
//   - pk: primary key; at most one column per entity
//   - notnull: rendered as NOT NULL
//   - unique: recorded on the descriptor, not rendered as DDL
//   - auto: database-assigned sequence value (32- and 64-bit integers)
//   - uuid: server-side random UUID default; overrides the field's own type
//
// A struct without TableName is still a valid query result target, but
// registering a repository over it skips schema synchronization.
type Entity interface {
	TableName() string
}

// Char is a single character persisted in a CHAR(1) column. Plain rune
// fields map to integers; use Char when one-letter codes should stay
// readable in the database.
type Char = typemap.Char
