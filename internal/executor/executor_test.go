package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanyiying/rnr/internal/dump"
	"github.com/xuanyiying/rnr/internal/report"
	"github.com/xuanyiying/rnr/internal/solver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExecute_SimpleRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "hello")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepRename, Source: src, Target: filepath.Join(dir, "b.txt")},
	}}

	result := Execute(context.Background(), plan, Options{}, report.NopSink{})
	require.NoError(t, result.Err)
	require.Len(t, result.Executed, 1)
	assert.Equal(t, src, result.Executed[0].Source)

	_, err := os.Stat(filepath.Join(dir, "b.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_CreateParentsBeforeRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "hello")
	target := filepath.Join(dir, "nested", "deep", "b.txt")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepCreateParents, Target: filepath.Join(dir, "nested", "deep")},
		{Kind: solver.StepRename, Source: src, Target: target},
	}}

	result := Execute(context.Background(), plan, Options{}, report.NopSink{})
	require.NoError(t, result.Err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestExecute_BackupCopiesContentBeforeRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "original content")
	target := filepath.Join(dir, "b.txt")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepBackup, Source: src},
		{Kind: solver.StepRename, Source: src, Target: target},
	}}

	result := Execute(context.Background(), plan, Options{}, report.NopSink{})
	require.NoError(t, result.Err)

	backupContent, err := os.ReadFile(src + ".bk")
	require.NoError(t, err)
	assert.Equal(t, "original content", string(backupContent))

	targetContent, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original content", string(targetContent))
}

func TestExecute_HaltsOnFirstFailureNoRollback(t *testing.T) {
	dir := t.TempDir()
	src1 := filepath.Join(dir, "a.txt")
	src2 := filepath.Join(dir, "b.txt") // deliberately missing
	writeFile(t, src1, "one")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepRename, Source: src1, Target: filepath.Join(dir, "z1.txt")},
		{Kind: solver.StepRename, Source: src2, Target: filepath.Join(dir, "z2.txt")},
	}}

	result := Execute(context.Background(), plan, Options{}, report.NopSink{})
	require.Error(t, result.Err)
	require.Len(t, result.Executed, 1, "the first, successful rename must not be rolled back")

	_, err := os.Stat(filepath.Join(dir, "z1.txt"))
	assert.NoError(t, err)
}

func TestExecute_DryRunPerformsNoMutation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "hello")
	target := filepath.Join(dir, "b.txt")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepRename, Source: src, Target: target},
	}}

	result := Execute(context.Background(), plan, Options{DryRun: true}, report.NopSink{})
	require.NoError(t, result.Err)
	require.Len(t, result.Executed, 1, "dry-run still reports what it would have done")

	_, err := os.Stat(src)
	assert.NoError(t, err, "source must still exist: dry-run performs no mutation")
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_WritesDumpRecordOnSuccessWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	dumpDir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "hello")
	target := filepath.Join(dir, "b.txt")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepRename, Source: src, Target: target},
	}}

	result := Execute(context.Background(), plan, Options{
		Dump: DumpOptions{Enabled: true, Dir: dumpDir, Mode: dump.Mode{}},
	}, report.NopSink{})
	require.NoError(t, result.Err)
	require.NotEmpty(t, result.DumpPath)

	rec, err := dump.Read(result.DumpPath)
	require.NoError(t, err)
	require.Len(t, rec.Operations, 1)
	assert.Equal(t, src, rec.Operations[0].Source)
	assert.Equal(t, target, rec.Operations[0].Target)
}

func TestExecute_WritesPartialDumpOnFailureWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	dumpDir := t.TempDir()
	src1 := filepath.Join(dir, "a.txt")
	src2 := filepath.Join(dir, "missing.txt")
	writeFile(t, src1, "one")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepRename, Source: src1, Target: filepath.Join(dir, "z1.txt")},
		{Kind: solver.StepRename, Source: src2, Target: filepath.Join(dir, "z2.txt")},
	}}

	result := Execute(context.Background(), plan, Options{
		Dump: DumpOptions{Enabled: true, Dir: dumpDir},
	}, report.NopSink{})
	require.Error(t, result.Err)
	require.NotEmpty(t, result.DumpPath)

	rec, err := dump.Read(result.DumpPath)
	require.NoError(t, err)
	require.Len(t, rec.Operations, 1, "dump must contain only the steps that actually completed")
}

func TestExecute_DeleteRemovesOnlyEmptyDirectories(t *testing.T) {
	dir := t.TempDir()
	emptyDir := filepath.Join(dir, "empty")
	nonEmptyDir := filepath.Join(dir, "full")
	require.NoError(t, os.Mkdir(emptyDir, 0o755))
	require.NoError(t, os.Mkdir(nonEmptyDir, 0o755))
	writeFile(t, filepath.Join(nonEmptyDir, "keep.txt"), "x")

	plan := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepDelete, Source: emptyDir},
	}}
	result := Execute(context.Background(), plan, Options{}, report.NopSink{})
	require.NoError(t, result.Err)
	_, err := os.Stat(emptyDir)
	assert.True(t, os.IsNotExist(err))

	plan2 := &solver.Plan{Steps: []solver.Step{
		{Kind: solver.StepDelete, Source: nonEmptyDir},
	}}
	result2 := Execute(context.Background(), plan2, Options{}, report.NopSink{})
	require.Error(t, result2.Err)
	_, err = os.Stat(nonEmptyDir)
	assert.NoError(t, err, "non-empty directory must survive a refused delete")
}

func TestExecute_ConcurrentBackupsAllComplete(t *testing.T) {
	dir := t.TempDir()
	var steps []solver.Step
	for i := 0; i < 12; i++ {
		src := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		writeFile(t, src, "content")
		steps = append(steps, solver.Step{Kind: solver.StepBackup, Source: src})
		steps = append(steps, solver.Step{Kind: solver.StepRename, Source: src, Target: src + ".done"})
	}
	plan := &solver.Plan{Steps: steps}

	result := Execute(context.Background(), plan, Options{Concurrency: 4}, report.NopSink{})
	require.NoError(t, result.Err)
	require.Len(t, result.Executed, 12)

	for i := 0; i < 12; i++ {
		src := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		_, err := os.Stat(src + ".bk")
		assert.NoError(t, err)
	}
}
