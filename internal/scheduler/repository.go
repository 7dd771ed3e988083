// Package scheduler runs cron-scheduled routines against receivers.
package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/strefethen/yamaha-hub-go/internal/db"
)

// cronParser accepts the standard 5-field form: minute, hour, day-of-month,
// month, day-of-week.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseCron validates a cron expression and returns its schedule.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// Routine is one scheduled receiver command.
type Routine struct {
	RoutineID  string     `json:"routine_id"`
	Name       string     `json:"name"`
	Enabled    bool       `json:"enabled"`
	ReceiverID string     `json:"receiver_id"`
	Zone       string     `json:"zone,omitempty"`
	Action     string     `json:"action"`
	Parameter  string     `json:"parameter,omitempty"`
	CronExpr   string     `json:"cron_expr"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Repository struct {
	db *db.DBPair
}

func NewRepository(pair *db.DBPair) *Repository {
	return &Repository{db: pair}
}

const routineColumns = `routine_id, name, enabled, receiver_id, COALESCE(zone, ''), action,
	COALESCE(parameter, ''), cron_expr, last_run_at, created_at, updated_at`

func scanRoutine(row interface{ Scan(...any) error }) (Routine, error) {
	var routine Routine
	var enabled int
	var lastRun sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&routine.RoutineID, &routine.Name, &enabled, &routine.ReceiverID,
		&routine.Zone, &routine.Action, &routine.Parameter, &routine.CronExpr,
		&lastRun, &createdAt, &updatedAt,
	)
	if err != nil {
		return Routine{}, err
	}

	routine.Enabled = enabled != 0
	if lastRun.Valid {
		if t, err := parseDBTime(lastRun.String); err == nil {
			routine.LastRunAt = &t
		}
	}
	routine.CreatedAt, _ = parseDBTime(createdAt)
	routine.UpdatedAt, _ = parseDBTime(updatedAt)
	return routine, nil
}

// parseDBTime handles both SQLite's datetime('now') form and RFC 3339.
func parseDBTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}

// Create inserts a routine, assigning its ID.
func (repo *Repository) Create(routine *Routine) error {
	if routine.RoutineID == "" {
		routine.RoutineID = uuid.NewString()
	}

	enabled := 0
	if routine.Enabled {
		enabled = 1
	}
	_, err := repo.db.Writer().Exec(`
		INSERT INTO routines (routine_id, name, enabled, receiver_id, zone, action, parameter, cron_expr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		routine.RoutineID, routine.Name, enabled, routine.ReceiverID,
		routine.Zone, routine.Action, routine.Parameter, routine.CronExpr,
	)
	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

// Get returns the routine, or nil when absent.
func (repo *Repository) Get(routineID string) (*Routine, error) {
	row := repo.db.Reader().QueryRow(
		"SELECT "+routineColumns+" FROM routines WHERE routine_id = ?", routineID,
	)
	routine, err := scanRoutine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine %s: %w", routineID, err)
	}
	return &routine, nil
}

// List returns all routines ordered by name.
func (repo *Repository) List() ([]Routine, error) {
	rows, err := repo.db.Reader().Query(
		"SELECT " + routineColumns + " FROM routines ORDER BY name, routine_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	routines := make([]Routine, 0)
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, rows.Err()
}

// ListEnabled returns the routines the runner should evaluate.
func (repo *Repository) ListEnabled() ([]Routine, error) {
	rows, err := repo.db.Reader().Query(
		"SELECT " + routineColumns + " FROM routines WHERE enabled = 1",
	)
	if err != nil {
		return nil, fmt.Errorf("list enabled routines: %w", err)
	}
	defer rows.Close()

	routines := make([]Routine, 0)
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, rows.Err()
}

// Update rewrites every mutable field of a routine.
func (repo *Repository) Update(routine Routine) (bool, error) {
	enabled := 0
	if routine.Enabled {
		enabled = 1
	}
	result, err := repo.db.Writer().Exec(`
		UPDATE routines
		SET name = ?, enabled = ?, receiver_id = ?, zone = ?, action = ?,
		    parameter = ?, cron_expr = ?, updated_at = datetime('now')
		WHERE routine_id = ?`,
		routine.Name, enabled, routine.ReceiverID, routine.Zone,
		routine.Action, routine.Parameter, routine.CronExpr, routine.RoutineID,
	)
	if err != nil {
		return false, fmt.Errorf("update routine %s: %w", routine.RoutineID, err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// MarkRun records a completed execution.
func (repo *Repository) MarkRun(routineID string, at time.Time) error {
	_, err := repo.db.Writer().Exec(
		"UPDATE routines SET last_run_at = ?, updated_at = datetime('now') WHERE routine_id = ?",
		at.UTC().Format("2006-01-02 15:04:05"), routineID,
	)
	if err != nil {
		return fmt.Errorf("mark routine %s run: %w", routineID, err)
	}
	return nil
}

// Delete removes a routine, reporting whether it existed.
func (repo *Repository) Delete(routineID string) (bool, error) {
	result, err := repo.db.Writer().Exec(
		"DELETE FROM routines WHERE routine_id = ?", routineID,
	)
	if err != nil {
		return false, fmt.Errorf("delete routine %s: %w", routineID, err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
