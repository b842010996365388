package clean

import (
	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// FillAddresses populates null property_address cells from sibling records
// sharing the same parcel_id. When several non-null siblings exist, the value
// from the sibling with the smallest record_id wins; parcels with no non-null
// sibling are left null, which is not an error. Once filled, a record is
// never a gap again.
type FillAddresses struct{}

func (FillAddresses) Name() string { return "fill-addresses" }

func (FillAddresses) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "fill-addresses", ColParcelID, ColPropertyAddress); err != nil {
		return err
	}

	rows, err := ds.Select(nil)
	if err != nil {
		return err
	}

	// Records come back ordered by record_id ascending, so the first
	// non-null address seen per parcel is the minimum-record_id candidate.
	// A record with a null address never enters the map, which also rules
	// out a record acting as its own source.
	source := make(map[string]string)
	for _, rec := range rows {
		if rec.IsNull(ColParcelID) || rec.IsNull(ColPropertyAddress) {
			continue
		}
		parcel := rec.Str(ColParcelID)
		if _, ok := source[parcel]; !ok {
			source[parcel] = rec.Str(ColPropertyAddress)
		}
	}

	filled, err := ds.Update(dataset.Null(ColPropertyAddress), func(rec dataset.Record) (map[string]any, error) {
		addr, ok := source[rec.Str(ColParcelID)]
		if !ok {
			return nil, nil
		}
		return map[string]any{ColPropertyAddress: addr}, nil
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "fill-addresses: filled %d of %d records from %d parcels",
		filled, len(rows), len(source))
	return nil
}
