package clean

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/housing-cleanse/internal/dataset"
)

// rawColumns mirrors the ingested extract schema used across the stage tests.
var rawColumns = []string{
	dataset.KeyColumn,
	ColParcelID,
	ColPropertyAddress,
	ColSaleDate,
	ColSalePrice,
	ColLegalReference,
	ColSoldAsVacant,
	ColOwnerAddress,
}

func newSaleDataset(t *testing.T, rows ...dataset.Record) *dataset.Memory {
	t.Helper()
	ds := dataset.NewMemory()
	require.NoError(t, ds.AddColumn(dataset.KeyColumn, dataset.TypeInteger))
	for _, col := range rawColumns[1:] {
		require.NoError(t, ds.AddColumn(col, dataset.TypeText))
	}
	for _, row := range rows {
		require.NoError(t, ds.Insert(row))
	}
	return ds
}

func byID(t *testing.T, ds dataset.Dataset, id int64) dataset.Record {
	t.Helper()
	rows, err := ds.Select(func(r dataset.Record) bool { return r.ID() == id })
	require.NoError(t, err)
	require.Len(t, rows, 1, "expected exactly one record with id %d", id)
	return rows[0]
}

// snapshot captures table state for idempotence comparisons.
func snapshot(t *testing.T, ds dataset.Dataset) ([]string, []dataset.Record) {
	t.Helper()
	cols, err := ds.Columns()
	require.NoError(t, err)
	rows, err := ds.Select(nil)
	require.NoError(t, err)
	return cols, rows
}

// requireIdempotent runs the stage once, snapshots, runs it again, and
// requires the second run to be a no-op.
func requireIdempotent(t *testing.T, stage Stage, ds dataset.Dataset) {
	t.Helper()
	require.NoError(t, stage.Run(false, ds))
	cols, rows := snapshot(t, ds)

	require.NoError(t, stage.Run(false, ds))
	cols2, rows2 := snapshot(t, ds)

	require.Equal(t, cols, cols2, "stage %s changed the schema on re-run", stage.Name())
	require.Equal(t, rows, rows2, "stage %s changed data on re-run", stage.Name())
}
