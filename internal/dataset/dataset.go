// Package dataset provides the mutable table abstraction the cleaning
// pipeline operates on. Two implementations share one contract: an in-memory
// table and a Postgres-backed table. Every mutating operation is atomic
// (all-or-nothing) and safe to re-run once applied.
package dataset

import (
	"strings"

	"github.com/spf13/cast"
)

// KeyColumn is the identity column every record carries. It is unique,
// immutable, and the deterministic tie-break for all ordering decisions.
const KeyColumn = "record_id"

// ColumnType is the semantic type of a column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeInteger ColumnType = "integer"
	TypeDate    ColumnType = "date"
	TypeNumeric ColumnType = "numeric"
)

// Record is one row of the table, keyed by column name. Null cells are
// either absent or hold nil.
type Record map[string]any

// ID returns the record's identity key.
func (r Record) ID() int64 {
	return cast.ToInt64(r[KeyColumn])
}

// Str returns the cell value as a string, empty for null cells.
func (r Record) Str(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// IsNull reports whether the cell is null. Whitespace-only strings count as
// null, matching how the CSV importer stores empty cells.
func (r Record) IsNull(column string) bool {
	v, ok := r[column]
	if !ok || v == nil {
		return true
	}
	return strings.TrimSpace(cast.ToString(v)) == ""
}

// Clone returns a copy of the record safe for the caller to mutate.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Predicate selects records. A nil Predicate matches every record.
type Predicate func(Record) bool

// All matches every record.
func All(Record) bool { return true }

// Null matches records whose named column is null.
func Null(column string) Predicate {
	return func(r Record) bool { return r.IsNull(column) }
}

// Assignment computes the column changes for one matched record. Returning
// an empty or nil map leaves the record untouched. Returning an error aborts
// the whole operation with no changes applied.
type Assignment func(Record) (map[string]any, error)

// Set is an Assignment applying the same fixed values to every matched record.
func Set(values map[string]any) Assignment {
	return func(Record) (map[string]any, error) { return values, nil }
}

// Dataset is the single shared resource of the cleaning pipeline: a mutable
// table of sale records. Implementations are not safe for concurrent use;
// the pipeline assumes exclusive access for its duration.
type Dataset interface {
	// Columns returns the column names in schema order.
	Columns() ([]string, error)

	// HasColumn reports whether the named column exists.
	HasColumn(name string) (bool, error)

	// AddColumn adds a column. No-op if it already exists.
	AddColumn(name string, typ ColumnType) error

	// DropColumn removes a column. No-op if it is absent.
	DropColumn(name string) error

	// Insert appends a record. The record must carry a unique KeyColumn.
	Insert(rec Record) error

	// Select returns copies of the records matching pred, ordered by
	// KeyColumn ascending. Mutating the result does not touch the table.
	Select(pred Predicate) ([]Record, error)

	// Update applies assign to every record matching pred as a single
	// all-or-nothing unit and returns the number of records changed.
	Update(pred Predicate, assign Assignment) (int, error)

	// Delete removes every record matching pred as a single all-or-nothing
	// unit and returns the number removed.
	Delete(pred Predicate) (int, error)

	// Count returns the number of records in the table.
	Count() (int, error)
}
