package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultTickInterval is how often the runner re-evaluates routines.
	// Cron resolution is one minute, so sub-minute ticks only bound how
	// late within the minute a routine can fire.
	DefaultTickInterval = 20 * time.Second

	executeTimeout = 30 * time.Second
)

// Executor runs a routine's action against its receiver.
type Executor interface {
	Apply(ctx context.Context, receiverID, zone, action, parameter string) error
}

// Runner evaluates enabled routines and fires the ones whose schedule has
// come due since their last run.
type Runner struct {
	logger       *log.Logger
	repo         *Repository
	executor     Executor
	tickInterval time.Duration

	startMu sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewRunner(logger *log.Logger, repo *Repository, executor Executor, tickInterval time.Duration) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Runner{
		logger:       logger,
		repo:         repo,
		executor:     executor,
		tickInterval: tickInterval,
	}
}

// Start begins the evaluation loop. Calling Start on a running runner is a
// no-op.
func (runner *Runner) Start() {
	runner.startMu.Lock()
	defer runner.startMu.Unlock()

	if runner.stopCh != nil {
		return
	}
	runner.stopCh = make(chan struct{})
	runner.wg.Add(1)

	runner.logger.Printf("Routine runner starting, tick interval %v", runner.tickInterval)

	go func() {
		defer runner.wg.Done()
		ticker := time.NewTicker(runner.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runner.tick(time.Now().UTC())
			case <-runner.stopCh:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight execution.
func (runner *Runner) Stop() {
	runner.startMu.Lock()
	defer runner.startMu.Unlock()

	if runner.stopCh == nil {
		return
	}
	close(runner.stopCh)
	runner.wg.Wait()
	runner.stopCh = nil
	runner.logger.Print("Routine runner stopped")
}

func (runner *Runner) tick(now time.Time) {
	routines, err := runner.repo.ListEnabled()
	if err != nil {
		runner.logger.Printf("Routine poll failed: %v", err)
		return
	}

	for _, routine := range routines {
		if !due(routine, now) {
			continue
		}
		runner.execute(routine, now)
	}
}

// due reports whether the routine's next scheduled time since its last run
// has passed. A routine that has never run anchors on its creation time so a
// freshly created routine does not fire retroactively.
func due(routine Routine, now time.Time) bool {
	schedule, err := ParseCron(routine.CronExpr)
	if err != nil {
		return false
	}

	anchor := routine.CreatedAt
	if routine.LastRunAt != nil {
		anchor = *routine.LastRunAt
	}
	next := schedule.Next(anchor)
	return !next.IsZero() && !next.After(now)
}

func (runner *Runner) execute(routine Routine, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
	defer cancel()

	err := runner.executor.Apply(ctx, routine.ReceiverID, routine.Zone, routine.Action, routine.Parameter)
	if err != nil {
		runner.logger.Printf("Routine %q (%s) failed: %v", routine.Name, routine.RoutineID, err)
	} else {
		runner.logger.Printf("Routine %q (%s) executed: %s", routine.Name, routine.RoutineID, routine.Action)
	}

	// The run is recorded even on failure; cron routines fire per schedule
	// slot, they do not retry until the next slot.
	if err := runner.repo.MarkRun(routine.RoutineID, now); err != nil {
		runner.logger.Printf("Routine %s run not recorded: %v", routine.RoutineID, err)
	}
}
