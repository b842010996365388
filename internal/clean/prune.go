package clean

import (
	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// Prune drops a caller-specified set of columns. Absent columns are a no-op.
// Pruning is the final stage by pipeline-order contract; the stage itself
// does not check what downstream might have depended on. The identity column
// is the one exception: it anchors provenance and is never dropped.
type Prune struct {
	columns []string
}

// NewPrune creates the pruning stage for the given columns.
func NewPrune(columns ...string) Prune {
	return Prune{columns: columns}
}

func (Prune) Name() string { return "prune-columns" }

func (p Prune) Run(localDebug bool, ds dataset.Dataset) error {
	for _, col := range p.columns {
		if col == dataset.KeyColumn {
			debug.Output(localDebug, "prune-columns: refusing to drop %s", col)
			continue
		}
		if err := ds.DropColumn(col); err != nil {
			return err
		}
		debug.Output(localDebug, "prune-columns: dropped %s", col)
	}
	return nil
}
