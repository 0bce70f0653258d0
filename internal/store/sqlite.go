package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/parley.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/parley.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		public_key TEXT UNIQUE NOT NULL,
		name TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_participants_public_key ON participants(public_key);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateParticipant creates a new participant record.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, publicKey, name string) (*models.Participant, error) {
	id := crypto.NewUUIDv7()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, public_key, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id.String(), publicKey, name, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetParticipantByID(ctx, id)
}

// GetParticipantByID retrieves a participant by ID.
func (s *SQLiteStore) GetParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p := &models.Participant{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, public_key, name, created_at, updated_at
		FROM participants WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&p.PublicKey,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = uuid.MustParse(idStr)
	return p, nil
}

// GetParticipantByPublicKey retrieves a participant by public key.
func (s *SQLiteStore) GetParticipantByPublicKey(ctx context.Context, publicKey string) (*models.Participant, error) {
	p := &models.Participant{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, public_key, name, created_at, updated_at
		FROM participants WHERE public_key = ?
	`, publicKey).Scan(
		&idStr,
		&p.PublicKey,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = uuid.MustParse(idStr)
	return p, nil
}

// CountParticipants returns the number of registered participants.
func (s *SQLiteStore) CountParticipants(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}
