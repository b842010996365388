package clean

import (
	"strings"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// SplitPropertyAddress decomposes property_address on its first comma: the
// part before it becomes property_address_line, the remainder property_city.
// Without a comma the whole trimmed value is the line and the city stays
// null. Pure function of current state, so re-running changes nothing. Runs
// after FillAddresses so gap-filled addresses are split too.
type SplitPropertyAddress struct{}

func (SplitPropertyAddress) Name() string { return "split-property-address" }

func (SplitPropertyAddress) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "split-property-address", ColPropertyAddress); err != nil {
		return err
	}
	if err := ds.AddColumn(ColPropertyAddressLine, dataset.TypeText); err != nil {
		return err
	}
	if err := ds.AddColumn(ColPropertyCity, dataset.TypeText); err != nil {
		return err
	}

	updated, err := ds.Update(nil, func(rec dataset.Record) (map[string]any, error) {
		if rec.IsNull(ColPropertyAddress) {
			// A populated derived value is never overwritten with null.
			return nil, nil
		}

		addr := strings.TrimSpace(rec.Str(ColPropertyAddress))
		line := addr
		city := ""
		if i := strings.Index(addr, ","); i >= 0 {
			line = strings.TrimSpace(addr[:i])
			city = strings.TrimSpace(addr[i+1:])
		}

		changes := map[string]any{}
		if rec.Str(ColPropertyAddressLine) != line {
			changes[ColPropertyAddressLine] = line
		}
		if city == "" {
			if !rec.IsNull(ColPropertyCity) {
				changes[ColPropertyCity] = nil
			}
		} else if rec.Str(ColPropertyCity) != city {
			changes[ColPropertyCity] = city
		}
		return changes, nil
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "split-property-address: updated %d records", updated)
	return nil
}

// splitOwnerSegments decomposes an owner address into (line, city, state).
// Segments are comma-separated and addressed from the right: the last is the
// state, the second-to-last the city, everything before that the street line.
// Missing leading segments come back empty.
func splitOwnerSegments(raw string) (line, city, state string) {
	segs := strings.Split(raw, ",")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}

	n := len(segs)
	state = segs[n-1]
	if n >= 2 {
		city = segs[n-2]
	}
	if n >= 3 {
		line = strings.Join(segs[:n-2], ", ")
		line = strings.TrimSpace(strings.Trim(line, ", "))
	}
	return line, city, state
}

// SplitOwnerAddress decomposes owner_address into owner_address_line,
// owner_city and owner_state. Independent of the property address stages.
type SplitOwnerAddress struct{}

func (SplitOwnerAddress) Name() string { return "split-owner-address" }

func (SplitOwnerAddress) Run(localDebug bool, ds dataset.Dataset) error {
	if err := requireColumns(ds, "split-owner-address", ColOwnerAddress); err != nil {
		return err
	}
	for _, col := range []string{ColOwnerAddressLine, ColOwnerCity, ColOwnerState} {
		if err := ds.AddColumn(col, dataset.TypeText); err != nil {
			return err
		}
	}

	updated, err := ds.Update(nil, func(rec dataset.Record) (map[string]any, error) {
		if rec.IsNull(ColOwnerAddress) {
			return nil, nil
		}

		line, city, state := splitOwnerSegments(rec.Str(ColOwnerAddress))

		changes := map[string]any{}
		for col, val := range map[string]string{
			ColOwnerAddressLine: line,
			ColOwnerCity:        city,
			ColOwnerState:       state,
		} {
			if val == "" {
				if !rec.IsNull(col) {
					changes[col] = nil
				}
			} else if rec.Str(col) != val {
				changes[col] = val
			}
		}
		return changes, nil
	})
	if err != nil {
		return err
	}

	debug.Output(localDebug, "split-owner-address: updated %d records", updated)
	return nil
}
