package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Snapshot is one stored world serialization.
type Snapshot struct {
	ID       int64
	World    string
	TakenAt  time.Time
	Entities []map[string]any
}

// ErrNoSnapshot is returned when a world has no stored snapshots.
var ErrNoSnapshot = errors.New("no snapshot for world")

// SnapshotRepo stores and loads whole-world entity serializations as JSONB.
// It consumes the entity wire format only; it knows nothing about component
// types.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes one snapshot row for the world.
func (r *SnapshotRepo) Save(ctx context.Context, world string, entities []map[string]any) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO world_snapshots (world_name, entities) VALUES ($1, $2)`,
		world, payload,
	); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent snapshot for the world.
func (r *SnapshotRepo) LoadLatest(ctx context.Context, world string) (*Snapshot, error) {
	var (
		snap    Snapshot
		payload []byte
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, world_name, taken_at, entities
		 FROM world_snapshots
		 WHERE world_name = $1
		 ORDER BY taken_at DESC, id DESC
		 LIMIT 1`,
		world,
	).Scan(&snap.ID, &snap.World, &snap.TakenAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNoSnapshot, world)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	if err := json.Unmarshal(payload, &snap.Entities); err != nil {
		return nil, fmt.Errorf("snapshot unmarshal: %w", err)
	}
	return &snap, nil
}

// Prune deletes all but the newest keep snapshots for the world.
func (r *SnapshotRepo) Prune(ctx context.Context, world string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM world_snapshots
		 WHERE world_name = $1
		   AND id NOT IN (
		     SELECT id FROM world_snapshots
		     WHERE world_name = $1
		     ORDER BY taken_at DESC, id DESC
		     LIMIT $2
		   )`,
		world, keep,
	)
	if err != nil {
		return fmt.Errorf("snapshot prune: %w", err)
	}
	return nil
}
