package clean

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/housing-cleanse/internal/dataset"
)

func TestFillAddressesFromSibling(t *testing.T) {
	// Concrete scenario: record 1 has no address, its parcel sibling does.
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColParcelID: "P1"},
		dataset.Record{dataset.KeyColumn: int64(2), ColParcelID: "P1", ColPropertyAddress: "100 Main St, Nashville"},
	)

	require.NoError(t, FillAddresses{}.Run(false, ds))

	require.Equal(t, "100 Main St, Nashville", byID(t, ds, 1).Str(ColPropertyAddress))
}

func TestFillAddressesMinRecordIDWins(t *testing.T) {
	// Two disagreeing sources on one parcel: the smaller record_id wins.
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(4), ColParcelID: "P1", ColPropertyAddress: "FROM FOUR"},
		dataset.Record{dataset.KeyColumn: int64(2), ColParcelID: "P1", ColPropertyAddress: "FROM TWO"},
		dataset.Record{dataset.KeyColumn: int64(9), ColParcelID: "P1"},
	)

	require.NoError(t, FillAddresses{}.Run(false, ds))

	require.Equal(t, "FROM TWO", byID(t, ds, 9).Str(ColPropertyAddress))
}

func TestFillAddressesNoSiblingStaysNull(t *testing.T) {
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColParcelID: "P1"},
		dataset.Record{dataset.KeyColumn: int64(2), ColParcelID: "P1"},
		dataset.Record{dataset.KeyColumn: int64(3), ColParcelID: "P2", ColPropertyAddress: "300 Elm St"},
	)

	// Not an error: both P1 records simply remain gaps.
	require.NoError(t, FillAddresses{}.Run(false, ds))

	require.True(t, byID(t, ds, 1).IsNull(ColPropertyAddress))
	require.True(t, byID(t, ds, 2).IsNull(ColPropertyAddress))
}

func TestFillAddressesDoesNotCrossParcels(t *testing.T) {
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColParcelID: "P1"},
		dataset.Record{dataset.KeyColumn: int64(2), ColParcelID: "P2", ColPropertyAddress: "200 Oak Ave"},
	)

	require.NoError(t, FillAddresses{}.Run(false, ds))

	require.True(t, byID(t, ds, 1).IsNull(ColPropertyAddress))
}

func TestFillAddressesIdempotent(t *testing.T) {
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColParcelID: "P1"},
		dataset.Record{dataset.KeyColumn: int64(2), ColParcelID: "P1", ColPropertyAddress: "100 Main St, Nashville"},
		dataset.Record{dataset.KeyColumn: int64(3), ColParcelID: "P3"},
	)
	requireIdempotent(t, FillAddresses{}, ds)
}

func TestFillAddressesMissingColumn(t *testing.T) {
	ds := dataset.NewMemory()
	require.NoError(t, ds.AddColumn(dataset.KeyColumn, dataset.TypeInteger))
	require.NoError(t, ds.AddColumn(ColParcelID, dataset.TypeText))

	err := FillAddresses{}.Run(false, ds)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, ColPropertyAddress, missing.Column)
}
