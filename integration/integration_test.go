// Package integration_test exercises rnr's full pipeline end to end:
// collect, rename, solve, execute, dump, and undo, against a real
// temp-directory filesystem (spec.md §8, property P1).
package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanyiying/rnr/internal/collector"
	"github.com/xuanyiying/rnr/internal/dump"
	"github.com/xuanyiying/rnr/internal/executor"
	"github.com/xuanyiying/rnr/internal/rename"
	"github.com/xuanyiying/rnr/internal/report"
	"github.com/xuanyiying/rnr/internal/solver"
)

func writeFiles(t *testing.T, dir string, names []string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("content of "+n), 0o644))
	}
}

// TestFullPipeline_CollectRenameSolveExecuteDumpUndo covers P1: executing a
// batch and then undoing it from its own dump restores the original
// filesystem state.
func TestFullPipeline_CollectRenameSolveExecuteDumpUndo(t *testing.T) {
	dir := t.TempDir()
	dumpDir := t.TempDir()
	names := []string{"report-01.txt", "report-02.txt", "report-03.txt"}
	writeFiles(t, dir, names)
	originalContent := map[string]string{}
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(dir, n))
		require.NoError(t, err)
		originalContent[n] = string(data)
	}

	ctx := context.Background()

	// Collect.
	paths, err := collector.Collect(ctx, []string{dir}, collector.Options{Recursive: true}, collector.OSFilesystem{})
	require.NoError(t, err)
	require.Len(t, paths, len(names))

	// Rename: "report" -> "archive", limit 1.
	rule, err := rename.NewRegexRule("report", "archive", 1, rename.TransformNone)
	require.NoError(t, err)

	ops := make([]solver.Operation, len(paths))
	for i, src := range paths {
		target, err := rule.Apply(src)
		require.NoError(t, err)
		ops[i] = solver.Operation{Source: src, Target: target}
	}

	// Solve.
	batch := solver.NewBatch(ops, solver.Mode{})
	plan, conflicts := solver.Solve(batch, solver.NewOSFilesystem())
	require.Empty(t, conflicts)
	require.NotNil(t, plan)

	// Execute + dump.
	result := executor.Execute(ctx, plan, executor.Options{
		Dump: executor.DumpOptions{Enabled: true, Dir: dumpDir, Mode: dump.Mode{}},
	}, report.NopSink{})
	require.NoError(t, result.Err)
	require.NotEmpty(t, result.DumpPath)
	require.Len(t, result.Executed, len(names))

	for _, n := range names {
		_, statErr := os.Stat(filepath.Join(dir, n))
		assert.True(t, os.IsNotExist(statErr), "original name %s must no longer exist", n)
	}
	renamed := []string{"archive-01.txt", "archive-02.txt", "archive-03.txt"}
	for _, n := range renamed {
		content, readErr := os.ReadFile(filepath.Join(dir, n))
		require.NoError(t, readErr)
		assert.NotEmpty(t, content)
	}

	// Undo: read the dump back, invert it, solve and execute again.
	rec, err := dump.Read(result.DumpPath)
	require.NoError(t, err)

	undoOps := make([]solver.Operation, len(rec.Operations))
	for i, op := range dump.Invert(rec) {
		undoOps[i] = solver.Operation{Source: op.Source, Target: op.Target}
	}

	undoBatch := solver.NewBatch(undoOps, solver.Mode{})
	undoPlan, conflicts := solver.Solve(undoBatch, solver.NewOSFilesystem())
	require.Empty(t, conflicts)

	undoResult := executor.Execute(ctx, undoPlan, executor.Options{}, report.NopSink{})
	require.NoError(t, undoResult.Err)

	for _, n := range names {
		data, readErr := os.ReadFile(filepath.Join(dir, n))
		require.NoError(t, readErr, "undo must restore the original name %s", n)
		assert.Equal(t, originalContent[n], string(data), "undo must restore original content for %s", n)
	}
}

// TestFullPipeline_SwapRequiresTemporaryRename covers scenario 3 from
// spec.md §8: swapping two names end to end through the real executor,
// confirming the solver's cycle-break survives a live run, not just a
// fake-filesystem unit test.
func TestFullPipeline_SwapRequiresTemporaryRename(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(aPath, []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("B"), 0o644))

	ops := []solver.Operation{
		{Source: aPath, Target: bPath},
		{Source: bPath, Target: aPath},
	}
	batch := solver.NewBatch(ops, solver.Mode{})
	plan, conflicts := solver.Solve(batch, solver.NewOSFilesystem())
	require.Empty(t, conflicts)

	var renameCount int
	for _, s := range plan.Steps {
		if s.Kind == solver.StepRename {
			renameCount++
		}
	}
	require.Equal(t, 3, renameCount, "a swap must resolve through exactly one temporary rename")

	result := executor.Execute(context.Background(), plan, executor.Options{}, report.NopSink{})
	require.NoError(t, result.Err)

	aContent, err := os.ReadFile(aPath)
	require.NoError(t, err)
	assert.Equal(t, "B", string(aContent))

	bContent, err := os.ReadFile(bPath)
	require.NoError(t, err)
	assert.Equal(t, "A", string(bContent))
}

// TestFullPipeline_ConflictBlocksExecution covers P3: a Batch whose target
// collides with an out-of-batch file is rejected before anything mutates.
func TestFullPipeline_ConflictBlocksExecution(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	target := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("B"), 0o644))

	batch := solver.NewBatch([]solver.Operation{{Source: src, Target: target}}, solver.Mode{})
	plan, conflicts := solver.Solve(batch, solver.NewOSFilesystem())
	require.NotEmpty(t, conflicts)
	require.Nil(t, plan)

	srcContent, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "A", string(srcContent), "a rejected batch must not touch the filesystem")
}
