package dataset

import (
	"fmt"
	"sort"
)

// Memory is an in-memory Dataset. Mutations are staged in full before they
// are applied, so a failed Update or Delete leaves the table untouched.
type Memory struct {
	columns []string
	types   map[string]ColumnType
	rows    []Record
}

// NewMemory creates an empty in-memory table with no columns.
func NewMemory() *Memory {
	return &Memory{types: make(map[string]ColumnType)}
}

func (m *Memory) Columns() ([]string, error) {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out, nil
}

func (m *Memory) HasColumn(name string) (bool, error) {
	_, ok := m.types[name]
	return ok, nil
}

func (m *Memory) AddColumn(name string, typ ColumnType) error {
	if _, ok := m.types[name]; ok {
		return nil
	}
	m.columns = append(m.columns, name)
	m.types[name] = typ
	return nil
}

func (m *Memory) DropColumn(name string) error {
	if _, ok := m.types[name]; !ok {
		return nil
	}
	delete(m.types, name)
	for i, col := range m.columns {
		if col == name {
			m.columns = append(m.columns[:i], m.columns[i+1:]...)
			break
		}
	}
	for _, row := range m.rows {
		delete(row, name)
	}
	return nil
}

func (m *Memory) Insert(rec Record) error {
	if _, ok := rec[KeyColumn]; !ok {
		return fmt.Errorf("insert: record is missing %s", KeyColumn)
	}
	for col := range rec {
		if _, ok := m.types[col]; !ok {
			return fmt.Errorf("insert: unknown column %q", col)
		}
	}
	id := rec.ID()
	for _, row := range m.rows {
		if row.ID() == id {
			return fmt.Errorf("insert: duplicate %s %d", KeyColumn, id)
		}
	}
	m.rows = append(m.rows, rec.Clone())
	return nil
}

func (m *Memory) Select(pred Predicate) ([]Record, error) {
	var out []Record
	for _, row := range m.rows {
		if pred == nil || pred(row) {
			out = append(out, row.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *Memory) Update(pred Predicate, assign Assignment) (int, error) {
	type staged struct {
		row     Record
		changes map[string]any
	}
	var pending []staged

	// Evaluate every assignment before touching any row, so one bad row
	// aborts the whole operation.
	for _, row := range m.rows {
		if pred != nil && !pred(row) {
			continue
		}
		changes, err := assign(row.Clone())
		if err != nil {
			return 0, fmt.Errorf("update: %w", err)
		}
		if len(changes) == 0 {
			continue
		}
		for col := range changes {
			if _, ok := m.types[col]; !ok {
				return 0, fmt.Errorf("update: unknown column %q", col)
			}
		}
		pending = append(pending, staged{row: row, changes: changes})
	}

	for _, p := range pending {
		for col, val := range p.changes {
			p.row[col] = val
		}
	}
	return len(pending), nil
}

func (m *Memory) Delete(pred Predicate) (int, error) {
	kept := m.rows[:0:0]
	removed := 0
	for _, row := range m.rows {
		if pred != nil && pred(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return removed, nil
}

func (m *Memory) Count() (int, error) {
	return len(m.rows), nil
}
