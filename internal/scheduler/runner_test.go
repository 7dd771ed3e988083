package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCron(t *testing.T) {
	valid := []string{"0 7 * * *", "*/15 * * * *", "30 22 * * 1-5", "0 0 1 1 *"}
	for _, expr := range valid {
		_, err := ParseCron(expr)
		assert.NoError(t, err, expr)
	}

	invalid := []string{"", "not cron", "61 * * * *", "0 7 * *", "@reboot"}
	for _, expr := range invalid {
		_, err := ParseCron(expr)
		assert.Error(t, err, expr)
	}
}

func TestDueAnchorsOnCreation(t *testing.T) {
	created := time.Date(2026, 5, 1, 6, 30, 0, 0, time.UTC)
	routine := Routine{CronExpr: "0 7 * * *", CreatedAt: created}

	// The first slot after creation is 07:00 that day.
	assert.False(t, due(routine, time.Date(2026, 5, 1, 6, 59, 0, 0, time.UTC)))
	assert.True(t, due(routine, time.Date(2026, 5, 1, 7, 0, 30, 0, time.UTC)))

	// A routine created after today's slot waits for tomorrow.
	routine.CreatedAt = time.Date(2026, 5, 1, 7, 5, 0, 0, time.UTC)
	assert.False(t, due(routine, time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)))
	assert.True(t, due(routine, time.Date(2026, 5, 2, 7, 0, 0, 0, time.UTC)))
}

func TestDueAnchorsOnLastRun(t *testing.T) {
	created := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	lastRun := time.Date(2026, 5, 1, 7, 0, 10, 0, time.UTC)
	routine := Routine{CronExpr: "0 7 * * *", CreatedAt: created, LastRunAt: &lastRun}

	// Already fired today; not due again until tomorrow's slot.
	assert.False(t, due(routine, time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC)))
	assert.True(t, due(routine, time.Date(2026, 5, 2, 7, 0, 0, 0, time.UTC)))
}

func TestDueInvalidExpression(t *testing.T) {
	routine := Routine{CronExpr: "garbage", CreatedAt: time.Now().UTC()}
	assert.False(t, due(routine, time.Now().UTC()))
}

func TestParseDBTime(t *testing.T) {
	parsed, err := parseDBTime("2026-05-01 07:00:10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 7, 0, 10, 0, time.UTC), parsed)

	parsed, err = parseDBTime("2026-05-01T07:00:10Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 7, 0, 10, 0, time.UTC), parsed.UTC())

	_, err = parseDBTime("yesterday")
	assert.Error(t, err)
}
