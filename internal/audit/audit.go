// Package audit records every state-changing command issued to a receiver.
package audit

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strefethen/yamaha-hub-go/internal/db"
)

const pruneInterval = 24 * time.Hour

// Entry is one recorded command.
type Entry struct {
	EventID    string `json:"event_id"`
	ReceiverID string `json:"receiver_id"`
	Zone       string `json:"zone,omitempty"`
	Action     string `json:"action"`
	Parameter  string `json:"parameter,omitempty"`
	Outcome    string `json:"outcome"`
	ErrorCode  string `json:"error_code,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type Service struct {
	db            *db.DBPair
	logger        *log.Logger
	retentionDays int

	startMu sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewService(pair *db.DBPair, logger *log.Logger, retentionDays int) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		db:            pair,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Record writes one entry. Audit failures are logged but never surfaced to
// the caller; a command that reached the receiver already happened.
func (service *Service) Record(entry Entry) {
	if entry.EventID == "" {
		entry.EventID = uuid.NewString()
	}

	_, err := service.db.Writer().Exec(`
		INSERT INTO audit_events (event_id, receiver_id, zone, action, parameter, outcome, error_code, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID, entry.ReceiverID, entry.Zone, entry.Action,
		entry.Parameter, entry.Outcome, entry.ErrorCode, entry.RequestID,
	)
	if err != nil {
		service.logger.Printf("Audit write failed action=%s receiver=%s: %v", entry.Action, entry.ReceiverID, err)
	}
}

// List returns the newest entries, optionally filtered to one receiver.
func (service *Service) List(receiverID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT event_id, receiver_id, COALESCE(zone, ''), action, COALESCE(parameter, ''),
		       outcome, COALESCE(error_code, ''), COALESCE(request_id, ''), created_at
		FROM audit_events`
	args := []any{}
	if receiverID != "" {
		query += " WHERE receiver_id = ?"
		args = append(args, receiverID)
	}
	query += " ORDER BY created_at DESC, event_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := service.db.Reader().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.EventID, &entry.ReceiverID, &entry.Zone, &entry.Action,
			&entry.Parameter, &entry.Outcome, &entry.ErrorCode, &entry.RequestID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// StartPruning launches the daily retention sweep.
func (service *Service) StartPruning() {
	service.startMu.Lock()
	defer service.startMu.Unlock()

	if service.stopCh != nil {
		return
	}
	if service.retentionDays <= 0 {
		return
	}

	service.stopCh = make(chan struct{})
	service.wg.Add(1)

	go func() {
		defer service.wg.Done()
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()

		service.prune()
		for {
			select {
			case <-ticker.C:
				service.prune()
			case <-service.stopCh:
				return
			}
		}
	}()
}

// StopPruning halts the retention sweep.
func (service *Service) StopPruning() {
	service.startMu.Lock()
	defer service.startMu.Unlock()

	if service.stopCh == nil {
		return
	}
	close(service.stopCh)
	service.wg.Wait()
	service.stopCh = nil
}

func (service *Service) prune() {
	cutoff := fmt.Sprintf("-%d days", service.retentionDays)
	result, err := service.db.Writer().Exec(
		"DELETE FROM audit_events WHERE created_at < datetime('now', ?)", cutoff,
	)
	if err != nil {
		service.logger.Printf("Audit prune failed: %v", err)
		return
	}
	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		service.logger.Printf("Pruned %d audit event(s)", deleted)
	}
}
