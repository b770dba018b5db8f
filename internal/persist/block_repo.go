package persist

import (
	"context"
	"fmt"

	"github.com/voxhunt/server/internal/grid"
)

// BlockEdit is one pending placement or removal.
type BlockEdit struct {
	Cell    grid.Cell
	Removed bool
}

// BlockRepo persists externally placed blocks so the world survives a
// restart. Cells are the primary key; placing an already stored cell is an
// upsert no-op.
type BlockRepo struct {
	db *DB
}

func NewBlockRepo(db *DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// LoadAll returns every stored block cell.
func (r *BlockRepo) LoadAll(ctx context.Context) ([]grid.Cell, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT cell_x, cell_z FROM blocks ORDER BY cell_x, cell_z`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []grid.Cell
	for rows.Next() {
		var c grid.Cell
		if err := rows.Scan(&c.X, &c.Z); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Save upserts one block cell.
func (r *BlockRepo) Save(ctx context.Context, c grid.Cell) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO blocks (cell_x, cell_z) VALUES ($1, $2)
		 ON CONFLICT (cell_x, cell_z) DO NOTHING`, c.X, c.Z)
	return err
}

// Delete removes one block cell. Deleting an absent cell is a no-op.
func (r *BlockRepo) Delete(ctx context.Context, c grid.Cell) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM blocks WHERE cell_x = $1 AND cell_z = $2`, c.X, c.Z)
	return err
}

// Apply writes a batch of edits in a single transaction. All or nothing, so
// a mid-batch failure never leaves the stored world half-updated.
func (r *BlockRepo) Apply(ctx context.Context, edits []BlockEdit) error {
	if len(edits) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("blocks begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range edits {
		if e.Removed {
			if _, err := tx.Exec(ctx,
				`DELETE FROM blocks WHERE cell_x = $1 AND cell_z = $2`,
				e.Cell.X, e.Cell.Z,
			); err != nil {
				return fmt.Errorf("blocks delete: %w", err)
			}
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO blocks (cell_x, cell_z) VALUES ($1, $2)
			 ON CONFLICT (cell_x, cell_z) DO NOTHING`,
			e.Cell.X, e.Cell.Z,
		); err != nil {
			return fmt.Errorf("blocks insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}
