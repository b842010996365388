package clean

import (
	"strings"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// Canonical sold_as_vacant values.
const (
	VacantYes = "Yes"
	VacantNo  = "No"
)

// NormalizeVacant collapses the single-letter sold_as_vacant abbreviations to
// the canonical Yes/No forms. The mapping is value-driven: Y and N (case
// insensitive, trimmed) are rewritten, every other value passes through
// unchanged, so one pass reaches the fixed point.
type NormalizeVacant struct{}

func (NormalizeVacant) Name() string { return "normalize-vacant" }

func (NormalizeVacant) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "normalize-vacant", ColSoldAsVacant); err != nil {
		return err
	}

	updated, err := ds.Update(nil, func(rec dataset.Record) (map[string]any, error) {
		if rec.IsNull(ColSoldAsVacant) {
			return nil, nil
		}
		switch strings.ToLower(strings.TrimSpace(rec.Str(ColSoldAsVacant))) {
		case "y":
			return map[string]any{ColSoldAsVacant: VacantYes}, nil
		case "n":
			return map[string]any{ColSoldAsVacant: VacantNo}, nil
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "normalize-vacant: rewrote %d records", updated)
	return nil
}
