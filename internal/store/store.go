// Package store persists discovery blobs so the hub can skip re-discovery
// on startup. The registry owns record lifecycles; this layer is a plain
// key/value abstraction over SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/strefethen/yamaha-hub-go/internal/db"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
)

// RecordStore loads and saves receiver records by key.
type RecordStore interface {
	Load(id string) (*yamaha.ReceiverRecord, error)
	LoadAll() (map[string]yamaha.ReceiverRecord, error)
	Save(id string, record yamaha.ReceiverRecord) error
	Remove(id string) error
}

// SQLiteStore is the sqlite-backed RecordStore.
type SQLiteStore struct {
	db *db.DBPair
}

func NewSQLiteStore(pair *db.DBPair) *SQLiteStore {
	return &SQLiteStore{db: pair}
}

// Load returns the record for id, or nil when absent.
func (s *SQLiteStore) Load(id string) (*yamaha.ReceiverRecord, error) {
	var payload string
	err := s.db.Reader().QueryRow(
		"SELECT payload FROM receiver_records WHERE record_id = ?", id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}

	var record yamaha.ReceiverRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &record, nil
}

// LoadAll returns every persisted record keyed by id.
func (s *SQLiteStore) LoadAll() (map[string]yamaha.ReceiverRecord, error) {
	rows, err := s.db.Reader().Query("SELECT record_id, payload FROM receiver_records")
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]yamaha.ReceiverRecord)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var record yamaha.ReceiverRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		records[id] = record
	}
	return records, rows.Err()
}

// Save upserts a record, replacing any previous blob atomically.
func (s *SQLiteStore) Save(id string, record yamaha.ReceiverRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}
	_, err = s.db.Writer().Exec(`
		INSERT INTO receiver_records (record_id, payload) VALUES (?, ?)
		ON CONFLICT(record_id) DO UPDATE SET payload = excluded.payload, updated_at = datetime('now')`,
		id, string(payload),
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", id, err)
	}
	return nil
}

// Remove deletes a record; removing an absent key is not an error.
func (s *SQLiteStore) Remove(id string) error {
	if _, err := s.db.Writer().Exec("DELETE FROM receiver_records WHERE record_id = ?", id); err != nil {
		return fmt.Errorf("remove record %s: %w", id, err)
	}
	return nil
}
