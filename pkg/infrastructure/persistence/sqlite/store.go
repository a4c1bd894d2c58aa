// Package sqlite persists simulation snapshots in a single SQLite table,
// one JSON blob per section of the snapshot.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// DefaultPath is the database used when none is configured
const DefaultPath = "mrpsim.db"

const (
	bucketMeta             = "meta"
	bucketInventory        = "inventory"
	bucketOrders           = "orders"
	bucketPurchaseOrders   = "purchase_orders"
	bucketEvents           = "events"
	bucketInventoryHistory = "inventory_history"
	bucketProductionLog    = "production_log"
)

var buckets = []string{
	bucketMeta,
	bucketInventory,
	bucketOrders,
	bucketPurchaseOrders,
	bucketEvents,
	bucketInventoryHistory,
	bucketProductionLog,
}

type meta struct {
	RunID       uuid.UUID     `json:"run_id"`
	Day         int           `json:"day"`
	CurrentDate entities.Date `json:"current_date"`
}

// Store keeps the latest snapshot of one run
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens or creates the database at path
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load assembles the snapshot from its buckets. An empty table yields
// dto.ErrNoSnapshot.
func (s *Store) Load(ctx context.Context) (*dto.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	payloads := make(map[string][]byte, len(buckets))
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	if len(payloads) == 0 {
		return nil, dto.ErrNoSnapshot
	}
	if _, ok := payloads[bucketMeta]; !ok {
		return nil, fmt.Errorf("%w: state has no %s bucket", entities.ErrValidation, bucketMeta)
	}

	var m meta
	snap := dto.Snapshot{}
	targets := map[string]any{
		bucketMeta:             &m,
		bucketInventory:        &snap.Inventory,
		bucketOrders:           &snap.Orders,
		bucketPurchaseOrders:   &snap.PurchaseOrders,
		bucketEvents:           &snap.Events,
		bucketInventoryHistory: &snap.InventoryHistory,
		bucketProductionLog:    &snap.ProductionLog,
	}
	for _, bucket := range buckets {
		payload, ok := payloads[bucket]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, targets[bucket]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}

	snap.RunID = m.RunID
	snap.Day = m.Day
	snap.CurrentDate = m.CurrentDate
	snap.Normalize()
	return &snap, nil
}

// Save upserts every bucket of snap in one transaction
func (s *Store) Save(ctx context.Context, snap dto.Snapshot) (retErr error) {
	snap.Normalize()
	sections := map[string]any{
		bucketMeta:             meta{RunID: snap.RunID, Day: snap.Day, CurrentDate: snap.CurrentDate},
		bucketInventory:        snap.Inventory,
		bucketOrders:           snap.Orders,
		bucketPurchaseOrders:   snap.PurchaseOrders,
		bucketEvents:           snap.Events,
		bucketInventoryHistory: snap.InventoryHistory,
		bucketProductionLog:    snap.ProductionLog,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range buckets {
		data, err := json.Marshal(sections[bucket])
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for tests
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path
func (s *Store) Path() string { return s.path }
