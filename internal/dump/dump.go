// Package dump implements SPEC_FULL.md §4.5: persisting the sequence of
// operations an executed Batch actually performed, and deriving undo/redo
// batches from a persisted record.
package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
	"github.com/xuanyiying/rnr/pkg/validator"
)

// CurrentVersion is the schema version written by this build. Readers
// reject any dump whose major version differs (Design Notes §9: "version
// the dump format with a top-level integer field so future readers can
// reject incompatible dumps cleanly").
const CurrentVersion = 1

// Mode is the snapshot of mode flags active when a Batch executed,
// persisted verbatim in its Dump Record (spec.md §6).
type Mode struct {
	Backup      bool `json:"backup"`
	IncludeDirs bool `json:"include_dirs"`
	Hidden      bool `json:"hidden"`
	Force       bool `json:"force"`
}

// Operation is one executed (source, target) rename, in execution order.
type Operation struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Record is the on-disk Dump Record (spec.md §3, §6).
type Record struct {
	Version    int         `json:"version"`
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Mode       Mode        `json:"mode"`
	Operations []Operation `json:"operations"`
}

// NewRecord builds a Record for a just-executed batch, stamping a fresh
// UUID (SPEC_FULL.md §4.5: "Batch ID") and the current schema version.
func NewRecord(mode Mode, ops []Operation, timestamp time.Time) *Record {
	return &Record{
		Version:    CurrentVersion,
		ID:         uuid.NewString(),
		Timestamp:  timestamp,
		Mode:       mode,
		Operations: ops,
	}
}

// DefaultFilename returns the conventional dump filename for a timestamp:
// rnr-<ISO-8601>.json (spec.md §6).
func DefaultFilename(timestamp time.Time) string {
	return fmt.Sprintf("rnr-%s.json", timestamp.UTC().Format("2006-01-02T15-04-05.000000000Z"))
}

// Write serializes rec to dir/DefaultFilename(rec.Timestamp) and returns
// the path written.
func Write(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.WrapKind(apperrors.KindDump, err, "create dump dir %s", dir)
	}
	path := filepath.Join(dir, DefaultFilename(rec.Timestamp))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", apperrors.WrapKind(apperrors.KindDump, err, "marshal dump record")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.WrapKind(apperrors.KindDump, err, "write dump file %s", path)
	}
	return path, nil
}

// Read loads and validates a Dump Record from path.
func Read(path string) (*Record, error) {
	if err := validator.ValidatePath(path); err != nil {
		return nil, apperrors.WrapKind(apperrors.KindDump, err, "invalid dump path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapKind(apperrors.KindDump, err, "read dump file %s", path)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.WrapKind(apperrors.KindDump, err, "malformed dump file %s", path)
	}
	if rec.Version != CurrentVersion {
		return nil, apperrors.NewKind(apperrors.KindDump, "dump file %s has unsupported schema version %d (expected %d)", path, rec.Version, CurrentVersion)
	}
	return &rec, nil
}

// Invert builds the undo batch: each operation's source and target are
// swapped, and the list is reversed so undo replays in the opposite order
// execution happened (spec.md §4.5).
func Invert(rec *Record) []Operation {
	out := make([]Operation, len(rec.Operations))
	for i, op := range rec.Operations {
		out[len(rec.Operations)-1-i] = Operation{Source: op.Target, Target: op.Source}
	}
	return out
}

// Forward returns the operations in their original, as-executed order —
// the basis for redo (spec.md §4.5).
func Forward(rec *Record) []Operation {
	out := make([]Operation, len(rec.Operations))
	copy(out, rec.Operations)
	return out
}
