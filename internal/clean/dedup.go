package clean

import (
	"strings"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// dedupColumns is the composite duplicate key. sale_price and
// legal_reference are opaque comparison fields: grouped on, never
// transformed.
var dedupColumns = []string{
	ColParcelID,
	ColPropertyAddress,
	ColSalePrice,
	ColSaleDate,
	ColLegalReference,
}

// RemoveDuplicates keeps exactly one record per distinct composite key: the
// one with the smallest record_id. Runs after the value-cleaning stages so
// groups form over cleaned columns. The delete is a single all-or-nothing
// unit; an interrupted run leaves the Dataset as if the stage never ran.
type RemoveDuplicates struct{}

func (RemoveDuplicates) Name() string { return "remove-duplicates" }

func (RemoveDuplicates) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "remove-duplicates", dedupColumns...); err != nil {
		return err
	}

	rows, err := ds.Select(nil)
	if err != nil {
		return err
	}

	// Rows arrive ordered by record_id ascending: the first record seen per
	// key is the survivor, every later one is rank > 1.
	seen := make(map[string]bool)
	doomed := make(map[int64]bool)
	for _, rec := range rows {
		key := dedupKey(rec)
		if seen[key] {
			doomed[rec.ID()] = true
		}
		seen[key] = true
	}

	debug.Output(localDebug, "remove-duplicates: %d rows, %d distinct keys, %d duplicates",
		len(rows), len(seen), len(doomed))

	if len(doomed) == 0 {
		return nil
	}

	removed, err := ds.Delete(func(rec dataset.Record) bool {
		return doomed[rec.ID()]
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "remove-duplicates: removed %d records", removed)
	return nil
}

func dedupKey(rec dataset.Record) string {
	parts := make([]string, len(dedupColumns))
	for i, col := range dedupColumns {
		parts[i] = rec.Str(col)
	}
	return strings.Join(parts, "\x1f")
}
