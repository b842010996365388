// Package clean implements the sale-record cleaning pipeline: seven ordered,
// independently idempotent stages over one Dataset. Stages read and write the
// Dataset in place; later stages depend on columns produced by earlier ones.
package clean

import (
	"errors"
	"fmt"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// Column names of the sale record table.
const (
	ColParcelID            = "parcel_id"
	ColSaleDate            = "sale_date"
	ColSaleDateNormalized  = "sale_date_normalized"
	ColPropertyAddress     = "property_address"
	ColPropertyAddressLine = "property_address_line"
	ColPropertyCity        = "property_city"
	ColOwnerAddress        = "owner_address"
	ColOwnerAddressLine    = "owner_address_line"
	ColOwnerCity           = "owner_city"
	ColOwnerState          = "owner_state"
	ColSoldAsVacant        = "sold_as_vacant"
	ColSalePrice           = "sale_price"
	ColLegalReference      = "legal_reference"
)

// Stage is one cleaning transformation. Every stage is safe to re-run: once
// applied, running it again changes nothing.
type Stage interface {
	Name() string
	Run(localDebug bool, ds dataset.Dataset) error
}

// MissingColumnError reports a stage invoked before a prerequisite column
// exists.
type MissingColumnError struct {
	Stage  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("stage %s: required column %q does not exist", e.Stage, e.Column)
}

// StageError reports which stage failed. Effects of prior stages are intact;
// the failing stage's own write was rolled back by the Dataset.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// requireColumns fails fast when a prerequisite column is missing, rather
// than silently producing garbage derived values.
func requireColumns(ds dataset.Dataset, stage string, columns ...string) error {
	for _, col := range columns {
		ok, err := ds.HasColumn(col)
		if err != nil {
			return err
		}
		if !ok {
			return &MissingColumnError{Stage: stage, Column: col}
		}
	}
	return nil
}

// DefaultStages returns the canonical stage order. pruneColumns is the set of
// columns the final stage drops; pruning must come last so every dependent
// derived column exists before its source is removed.
func DefaultStages(pruneColumns ...string) []Stage {
	return []Stage{
		NormalizeDates{},
		FillAddresses{},
		SplitPropertyAddress{},
		SplitOwnerAddress{},
		NormalizeVacant{},
		RemoveDuplicates{},
		NewPrune(pruneColumns...),
	}
}

// StageByName resolves a stage by its CLI name. Prune is excluded because it
// needs a column list.
func StageByName(name string) (Stage, error) {
	for _, s := range []Stage{
		NormalizeDates{},
		FillAddresses{},
		SplitPropertyAddress{},
		SplitOwnerAddress{},
		NormalizeVacant{},
		RemoveDuplicates{},
	} {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q", name)
}

// Run executes stages in order against ds, halting at the first failure. The
// failing stage is identified via StageError; row-level conversion failures
// never abort a run.
func Run(localDebug bool, ds dataset.Dataset, stages ...Stage) error {
	for _, stage := range stages {
		done := debug.Timing(localDebug, stage.Name())
		err := stage.Run(localDebug, ds)
		done()
		if err != nil {
			var missing *MissingColumnError
			if errors.As(err, &missing) {
				return err
			}
			return &StageError{Stage: stage.Name(), Err: err}
		}
	}
	return nil
}
