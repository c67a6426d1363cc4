package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/homestack/pantry/internal/core/domain"
)

const snapshotID = 1

// MySQLAdapter keeps the document as a single-row JSON snapshot. The state is
// written wholesale on every save, so one row is the honest representation.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pantry_state (
			id INT PRIMARY KEY,
			doc JSON NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create pantry_state: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context) (*domain.Document, error) {
	var raw []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT doc FROM pantry_state WHERE id = ?`, snapshotID,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &doc, nil
}

func (m *MySQLAdapter) Save(ctx context.Context, doc *domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO pantry_state (id, doc, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = NOW()`,
		snapshotID, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}
