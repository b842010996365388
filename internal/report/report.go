// Package report provides read-only diagnostic queries over the sale record
// Dataset. Nothing here mutates the table; the queries surface row-level
// conversion failures and remaining gaps without being part of the
// transformation contract.
package report

import (
	"fmt"

	"github.com/housing-cleanse/internal/clean"
	"github.com/housing-cleanse/internal/dataset"
)

// derivedColumns are the columns the pipeline produces, reported on when
// present.
var derivedColumns = []string{
	clean.ColSaleDateNormalized,
	clean.ColPropertyAddress,
	clean.ColPropertyAddressLine,
	clean.ColPropertyCity,
	clean.ColOwnerAddressLine,
	clean.ColOwnerCity,
	clean.ColOwnerState,
}

// Reporter answers diagnostic queries against a Dataset.
type Reporter struct {
	ds dataset.Dataset
}

// NewReporter creates a reporter over ds.
func NewReporter(ds dataset.Dataset) *Reporter {
	return &Reporter{ds: ds}
}

// RowCount returns the number of records in the Dataset.
func (r *Reporter) RowCount() (int, error) {
	return r.ds.Count()
}

// MissingCount returns how many records have a null value in the named
// column. Asking about a column that does not exist is an error, not zero.
func (r *Reporter) MissingCount(column string) (int, error) {
	ok, err := r.ds.HasColumn(column)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("column %q does not exist", column)
	}
	rows, err := r.ds.Select(dataset.Null(column))
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// UnparseableDates lists the records whose sale_date still fails a strict
// parse; these are the rows Stage 1 left with a null derived date.
func (r *Reporter) UnparseableDates() ([]dataset.Record, error) {
	ok, err := r.ds.HasColumn(clean.ColSaleDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("column %q does not exist", clean.ColSaleDate)
	}
	return r.ds.Select(func(rec dataset.Record) bool {
		if rec.IsNull(clean.ColSaleDate) {
			return false
		}
		_, parses := clean.ParseSaleDate(rec.Str(clean.ColSaleDate))
		return !parses
	})
}

// UnfilledAddresses lists records whose property_address is still null after
// gap-filling, meaning no sibling on the same parcel had one either.
func (r *Reporter) UnfilledAddresses() ([]dataset.Record, error) {
	ok, err := r.ds.HasColumn(clean.ColPropertyAddress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("column %q does not exist", clean.ColPropertyAddress)
	}
	return r.ds.Select(dataset.Null(clean.ColPropertyAddress))
}

// Stats is a point-in-time diagnostic summary of the Dataset.
type Stats struct {
	Rows             int
	UnparseableDates int
	MissingByColumn  map[string]int
}

// Summary collects row counts and per-derived-column null counts. Derived
// columns that do not exist yet are simply omitted.
func (r *Reporter) Summary() (*Stats, error) {
	rows, err := r.ds.Count()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Rows: rows, MissingByColumn: make(map[string]int)}

	for _, col := range derivedColumns {
		ok, err := r.ds.HasColumn(col)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		missing, err := r.MissingCount(col)
		if err != nil {
			return nil, err
		}
		stats.MissingByColumn[col] = missing
	}

	if ok, err := r.ds.HasColumn(clean.ColSaleDate); err == nil && ok {
		bad, err := r.UnparseableDates()
		if err != nil {
			return nil, err
		}
		stats.UnparseableDates = len(bad)
	}

	return stats, nil
}
