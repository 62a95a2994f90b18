// Package executor implements spec.md §4.4: it consumes a solver.Plan
// front-to-back, performing CreateParents/Backup/Rename/Delete steps (or,
// in dry-run, only reporting what they would do), halting immediately on
// the first failure with no rollback of completed steps.
package executor

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/xuanyiying/rnr/internal/dump"
	"github.com/xuanyiying/rnr/internal/report"
	"github.com/xuanyiying/rnr/internal/solver"
	apperrors "github.com/xuanyiying/rnr/pkg/errors"
	"github.com/xuanyiying/rnr/pkg/filelock"
	"github.com/xuanyiying/rnr/pkg/fileutil"
)

// defaultBackupConcurrency bounds the backup worker pool when the caller
// doesn't specify one.
const defaultBackupConcurrency = 4

// DumpOptions controls whether Execute persists a Dump Record, and with
// what mode flags, once it finishes (successfully or not).
type DumpOptions struct {
	Enabled bool
	Dir     string
	Mode    dump.Mode
}

// Options configures one Execute call.
type Options struct {
	DryRun      bool
	Concurrency int // worker pool size for independent Backup steps
	Dump        DumpOptions
}

// Result is what executing a Plan produced.
type Result struct {
	// Executed holds every Rename step that actually completed (or, in
	// dry-run, every Rename step the Plan would have performed), in
	// execution order — the basis for a Dump Record.
	Executed []dump.Operation
	// DumpPath is set when a Dump Record was written.
	DumpPath string
	// Err is the first step failure encountered, nil on full success.
	Err error
	// FailedStep is set alongside Err when a CreateParents, Rename or
	// Delete step fails or is cancelled; it stays nil when the error comes
	// from the backup phase or from writing the dump.
	FailedStep *solver.Step
}

// Execute runs plan's steps against the real filesystem (or, in dry-run,
// reports them without mutating anything) and reports every step to sink.
func Execute(ctx context.Context, plan *solver.Plan, opts Options, sink report.Sink) Result {
	var result Result
	if opts.DryRun {
		result = executeDryRun(plan, sink)
	} else {
		result = executeLive(ctx, plan, opts, sink)
	}

	if opts.Dump.Enabled {
		rec := dump.NewRecord(opts.Dump.Mode, result.Executed, time.Now())
		path, err := dump.Write(opts.Dump.Dir, rec)
		if err != nil {
			if result.Err == nil {
				result.Err = err
			}
			return result
		}
		result.DumpPath = path
	}
	return result
}

func executeDryRun(plan *solver.Plan, sink report.Sink) Result {
	var executed []dump.Operation
	for _, step := range plan.Steps {
		sink.Step(report.StepResult{Kind: step.Kind, Source: step.Source, Target: step.Target, DryRun: true})
		if step.Kind == solver.StepRename {
			executed = append(executed, dump.Operation{Source: step.Source, Target: step.Target})
		}
	}
	return Result{Executed: executed}
}

func executeLive(ctx context.Context, plan *solver.Plan, opts Options, sink report.Sink) Result {
	locks := filelock.NewLockManager()

	var backupIdx []int
	for i, step := range plan.Steps {
		if step.Kind == solver.StepBackup {
			backupIdx = append(backupIdx, i)
		}
	}

	// Every Backup step's source is untouched filesystem state at this
	// point: Plan order guarantees no Rename runs before the Backup that
	// precedes it, and a Backup's source can only be renamed away by an
	// operation that has a dependency edge on it — which Plan order has
	// already serialized after this point. So all Backups are safe to run
	// concurrently as one phase before any Rename/CreateParents/Delete.
	if len(backupIdx) > 0 {
		if err := runBackupsConcurrently(ctx, plan.Steps, backupIdx, opts.Concurrency, locks, sink); err != nil {
			return Result{Err: err}
		}
	}

	var executed []dump.Operation
	for i := range plan.Steps {
		step := plan.Steps[i]
		if step.Kind == solver.StepBackup {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{Executed: executed, Err: err, FailedStep: &plan.Steps[i]}
		}

		if err := runStep(step, locks); err != nil {
			sink.Step(report.StepResult{Kind: step.Kind, Source: step.Source, Target: step.Target, Err: err})
			return Result{Executed: executed, Err: err, FailedStep: &plan.Steps[i]}
		}
		sink.Step(report.StepResult{Kind: step.Kind, Source: step.Source, Target: step.Target})

		if step.Kind == solver.StepRename {
			executed = append(executed, dump.Operation{Source: step.Source, Target: step.Target})
		}
	}
	return Result{Executed: executed}
}

func runBackupsConcurrently(ctx context.Context, steps []solver.Step, idxs []int, concurrency int, locks *filelock.LockManager, sink report.Sink) error {
	if concurrency <= 0 {
		concurrency = defaultBackupConcurrency
	}
	pool, err := ants.NewPool(concurrency, ants.WithPreAlloc(true))
	if err != nil {
		return apperrors.WrapKind(apperrors.KindExecution, err, "create backup worker pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, idx := range idxs {
		step := steps[idx]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			var path string
			lockErr := locks.WithLock(step.Source, func() error {
				var backupErr error
				path, backupErr = fileutil.BackupPath(step.Source)
				return backupErr
			})

			mu.Lock()
			defer mu.Unlock()
			if lockErr != nil {
				lockErr = apperrors.TagKind(apperrors.KindExecution, lockErr)
				sink.Step(report.StepResult{Kind: solver.StepBackup, Source: step.Source, Err: lockErr})
				if firstErr == nil {
					firstErr = lockErr
				}
				return
			}
			sink.Step(report.StepResult{Kind: solver.StepBackup, Source: step.Source, BackupPath: path})
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return apperrors.WrapKind(apperrors.KindExecution, err, "submit backup task for %s", step.Source)
		}
	}
	wg.Wait()
	return firstErr
}

func runStep(step solver.Step, locks *filelock.LockManager) error {
	switch step.Kind {
	case solver.StepCreateParents:
		return locks.WithLock(step.Target, func() error {
			if err := os.MkdirAll(step.Target, 0o755); err != nil {
				return apperrors.WrapKind(apperrors.KindExecution, err, "create parents %s", step.Target)
			}
			return nil
		})
	case solver.StepRename:
		return locks.WithLock(step.Target, func() error {
			if err := os.Rename(step.Source, step.Target); err != nil {
				return apperrors.WrapKind(apperrors.KindExecution, err, "rename %s -> %s", step.Source, step.Target)
			}
			return nil
		})
	case solver.StepDelete:
		return locks.WithLock(step.Source, func() error {
			return deletePath(step.Source)
		})
	default:
		return nil
	}
}

// deletePath implements the editor-only Delete step: files are always
// removable, directories only when empty (spec.md §4.4).
func deletePath(path string) error {
	kind, err := fileutil.DetectKind(path)
	if err != nil {
		return apperrors.WrapKind(apperrors.KindExecution, err, "stat %s", path)
	}
	if kind == fileutil.KindDirectory {
		empty, err := fileutil.IsEmpty(path)
		if err != nil {
			return apperrors.TagKind(apperrors.KindExecution, err)
		}
		if !empty {
			return apperrors.NewKind(apperrors.KindExecution, "refusing to delete non-empty directory %s", path)
		}
	}
	if err := os.Remove(path); err != nil {
		return apperrors.WrapKind(apperrors.KindExecution, err, "delete %s", path)
	}
	return nil
}
