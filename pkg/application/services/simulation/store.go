package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
)

// StateStore persists snapshots between process runs. Load returns
// dto.ErrNoSnapshot when nothing has been saved yet.
type StateStore interface {
	Load(ctx context.Context) (*dto.Snapshot, error)
	Save(ctx context.Context, snapshot dto.Snapshot) error
}

// LoadOrBootstrap restores the saved run, or bootstraps a new one when the
// store is empty. A snapshot that cannot be read or restored is not fatal:
// a fresh run is returned together with a warning describing the problem.
func LoadOrBootstrap(ctx context.Context, store StateStore, cat *catalog.Catalog, cfg Config, opts ...Option) (sim *Simulator, warning error, err error) {
	snap, loadErr := store.Load(ctx)
	switch {
	case loadErr == nil:
		sim, err = Restore(cat, cfg, *snap, opts...)
		if err == nil {
			return sim, nil, nil
		}
		warning = fmt.Errorf("discarding saved state: %w", err)
	case errors.Is(loadErr, dto.ErrNoSnapshot):
	default:
		warning = fmt.Errorf("discarding unreadable saved state: %w", loadErr)
	}

	sim, err = Bootstrap(cat, cfg, opts...)
	if err != nil {
		return nil, warning, err
	}
	return sim, warning, nil
}

// Save writes the current state of sim to store
func Save(ctx context.Context, store StateStore, sim *Simulator) error {
	if err := store.Save(ctx, sim.Snapshot()); err != nil {
		return fmt.Errorf("saving run %s: %w", sim.RunID(), err)
	}
	return nil
}
