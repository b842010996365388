package clean

import (
	"strings"
	"time"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// saleDateFormats are the strict formats accepted for raw sale dates, tried
// in order. The canonical form comes first so re-running the stage parses its
// own output.
var saleDateFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
}

// ParseSaleDate attempts a strict parse of a raw sale date value.
func ParseSaleDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDates converts sale_date values to calendar dates. The policy is
// two-phase: when every row in the batch parses, sale_date itself is rewritten
// to canonical form; when any row fails, the original column is left untouched
// and only the derived sale_date_normalized column is populated. Parse
// failures are row-scoped and tolerated, surfaced through reporting only.
type NormalizeDates struct{}

func (NormalizeDates) Name() string { return "normalize-dates" }

func (NormalizeDates) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "normalize-dates", ColSaleDate); err != nil {
		return err
	}

	rows, err := ds.Select(nil)
	if err != nil {
		return err
	}

	failures := 0
	for _, rec := range rows {
		if rec.IsNull(ColSaleDate) {
			continue
		}
		if _, ok := ParseSaleDate(rec.Str(ColSaleDate)); !ok {
			failures++
		}
	}
	inPlace := failures == 0
	debug.Output(localDebug, "normalize-dates: %d rows, %d unparseable, in-place=%v",
		len(rows), failures, inPlace)

	if err := ds.AddColumn(ColSaleDateNormalized, dataset.TypeDate); err != nil {
		return err
	}

	updated, err := ds.Update(nil, func(rec dataset.Record) (map[string]any, error) {
		if rec.IsNull(ColSaleDate) {
			return nil, nil
		}
		t, ok := ParseSaleDate(rec.Str(ColSaleDate))
		if !ok {
			// Row-level conversion failure: leave the derived cell null
			// rather than aborting the batch.
			return nil, nil
		}
		iso := t.Format("2006-01-02")

		changes := map[string]any{}
		if rec.Str(ColSaleDateNormalized) != iso {
			changes[ColSaleDateNormalized] = iso
		}
		if inPlace && strings.TrimSpace(rec.Str(ColSaleDate)) != iso {
			changes[ColSaleDate] = iso
		}
		return changes, nil
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "normalize-dates: updated %d records", updated)
	return nil
}
