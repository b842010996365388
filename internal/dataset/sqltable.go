package dataset

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// SQLTable is a Dataset backed by a single Postgres table. Every Update and
// Delete runs inside one transaction so a failure mid-batch rolls the whole
// operation back.
type SQLTable struct {
	db    *sql.DB
	table string
}

// NewSQLTable wraps an existing table as a Dataset.
func NewSQLTable(db *sql.DB, table string) *SQLTable {
	return &SQLTable{db: db, table: table}
}

var sqlTypes = map[ColumnType]string{
	TypeText:    "text",
	TypeInteger: "bigint",
	TypeDate:    "date",
	TypeNumeric: "numeric",
}

func (t *SQLTable) Columns() ([]string, error) {
	rows, err := t.db.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`, t.table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", t.table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (t *SQLTable) HasColumn(name string) (bool, error) {
	cols, err := t.Columns()
	if err != nil {
		return false, err
	}
	for _, col := range cols {
		if col == name {
			return true, nil
		}
	}
	return false, nil
}

func (t *SQLTable) AddColumn(name string, typ ColumnType) error {
	sqlType, ok := sqlTypes[typ]
	if !ok {
		return fmt.Errorf("unknown column type %q", typ)
	}
	_, err := t.db.Exec(fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		pq.QuoteIdentifier(t.table), pq.QuoteIdentifier(name), sqlType,
	))
	if err != nil {
		return fmt.Errorf("failed to add column %s: %w", name, err)
	}
	return nil
}

func (t *SQLTable) DropColumn(name string) error {
	_, err := t.db.Exec(fmt.Sprintf(
		"ALTER TABLE %s DROP COLUMN IF EXISTS %s",
		pq.QuoteIdentifier(t.table), pq.QuoteIdentifier(name),
	))
	if err != nil {
		return fmt.Errorf("failed to drop column %s: %w", name, err)
	}
	return nil
}

func (t *SQLTable) Insert(rec Record) error {
	if _, ok := rec[KeyColumn]; !ok {
		return fmt.Errorf("insert: record is missing %s", KeyColumn)
	}
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	places := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = pq.QuoteIdentifier(col)
		places[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[col]
	}

	_, err := t.db.Exec(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(t.table),
		strings.Join(quoted, ", "),
		strings.Join(places, ", "),
	), args...)
	if err != nil {
		return fmt.Errorf("failed to insert record %d: %w", rec.ID(), err)
	}
	return nil
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// selectAll reads the whole table ordered by the identity key. Date cells
// come back from the driver as time.Time; they are stored in the record in
// ISO date form so both Dataset implementations present the same values.
func (t *SQLTable) selectAll(q queryer, forUpdate bool) ([]Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s",
		pq.QuoteIdentifier(t.table), pq.QuoteIdentifier(KeyColumn))
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", t.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			switch v := vals[i].(type) {
			case []byte:
				rec[col] = string(v)
			case time.Time:
				rec[col] = v.Format("2006-01-02")
			default:
				rec[col] = v
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (t *SQLTable) Select(pred Predicate) ([]Record, error) {
	all, err := t.selectAll(t.db, false)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		if pred == nil || pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (t *SQLTable) Update(pred Predicate, assign Assignment) (int, error) {
	tx, err := t.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	all, err := t.selectAll(tx, true)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, rec := range all {
		if pred != nil && !pred(rec) {
			continue
		}
		changes, err := assign(rec.Clone())
		if err != nil {
			return 0, fmt.Errorf("update: %w", err)
		}
		if len(changes) == 0 {
			continue
		}

		cols := make([]string, 0, len(changes))
		for col := range changes {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		sets := make([]string, len(cols))
		args := make([]any, 0, len(cols)+1)
		for i, col := range cols {
			sets[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(col), i+1)
			args = append(args, changes[col])
		}
		args = append(args, rec.ID())

		_, err = tx.Exec(fmt.Sprintf(
			"UPDATE %s SET %s WHERE %s = $%d",
			pq.QuoteIdentifier(t.table),
			strings.Join(sets, ", "),
			pq.QuoteIdentifier(KeyColumn), len(cols)+1,
		), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to update record %d: %w", rec.ID(), err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit update: %w", err)
	}
	return updated, nil
}

func (t *SQLTable) Delete(pred Predicate) (int, error) {
	tx, err := t.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	all, err := t.selectAll(tx, true)
	if err != nil {
		return 0, err
	}

	var ids []int64
	for _, rec := range all {
		if pred == nil || pred(rec) {
			ids = append(ids, rec.ID())
		}
	}
	if len(ids) == 0 {
		return 0, tx.Commit()
	}

	res, err := tx.Exec(fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ANY($1)",
		pq.QuoteIdentifier(t.table), pq.QuoteIdentifier(KeyColumn),
	), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}

	removed, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(removed), nil
}

func (t *SQLTable) Count() (int, error) {
	var count int
	err := t.db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(t.table),
	)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
