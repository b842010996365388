package clean

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/housing-cleanse/internal/dataset"
)

func TestParseSaleDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"April 9, 2013", "2013-04-09", true},
		{"2013-04-09", "2013-04-09", true},
		{"4/9/2013", "2013-04-09", true},
		{"2013-04-09 00:00:00", "2013-04-09", true},
		{"  April 9, 2013  ", "2013-04-09", true},
		{"not a date", "", false},
		{"13/45/2020", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSaleDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseSaleDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseSaleDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDatesInPlaceWhenAllParse(t *testing.T) {
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColSaleDate: "April 9, 2013"},
		dataset.Record{dataset.KeyColumn: int64(2), ColSaleDate: "June 10, 2014"},
	)

	require.NoError(t, NormalizeDates{}.Run(false, ds))

	one := byID(t, ds, 1)
	require.Equal(t, "2013-04-09", one.Str(ColSaleDate), "whole batch parsed, so sale_date is normalized in place")
	require.Equal(t, "2013-04-09", one.Str(ColSaleDateNormalized))
	require.Equal(t, "2014-06-10", byID(t, ds, 2).Str(ColSaleDate))
}

func TestNormalizeDatesFallsBackOnAnyFailure(t *testing.T) {
	ds := newSaleDataset(t,
		dataset.Record{dataset.KeyColumn: int64(1), ColSaleDate: "April 9, 2013"},
		dataset.Record{dataset.KeyColumn: int64(2), ColSaleDate: "garbage"},
		dataset.Record{dataset.KeyColumn: int64(3)},
	)

	require.NoError(t, NormalizeDates{}.Run(false, ds))

	// Original column untouched for every row.
	require.Equal(t, "April 9, 2013", byID(t, ds, 1).Str(ColSaleDate))
	require.Equal(t, "garbage", byID(t, ds, 2).Str(ColSaleDate))

	// Derived column populated only where the parse succeeded; the failing
	// row is absorbed, never an error.
	require.Equal(t, "2013-04-09", byID(t, ds, 1).Str(ColSaleDateNormalized))
	require.True(t, byID(t, ds, 2).IsNull(ColSaleDateNormalized))
	require.True(t, byID(t, ds, 3).IsNull(ColSaleDateNormalized))
}

func TestNormalizeDatesIdempotent(t *testing.T) {
	t.Run("all parseable", func(t *testing.T) {
		ds := newSaleDataset(t,
			dataset.Record{dataset.KeyColumn: int64(1), ColSaleDate: "April 9, 2013"},
		)
		requireIdempotent(t, NormalizeDates{}, ds)
	})

	t.Run("with failures", func(t *testing.T) {
		ds := newSaleDataset(t,
			dataset.Record{dataset.KeyColumn: int64(1), ColSaleDate: "April 9, 2013"},
			dataset.Record{dataset.KeyColumn: int64(2), ColSaleDate: "garbage"},
		)
		requireIdempotent(t, NormalizeDates{}, ds)
	})
}

func TestNormalizeDatesMissingColumn(t *testing.T) {
	ds := dataset.NewMemory()
	require.NoError(t, ds.AddColumn(dataset.KeyColumn, dataset.TypeInteger))

	err := NormalizeDates{}.Run(false, ds)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, ColSaleDate, missing.Column)
}
