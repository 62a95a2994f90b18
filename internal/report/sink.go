// Package report defines the minimal seam the executor uses to surface
// step-by-step progress: one interface, one method. Color and layout
// decisions live in the CLI layer, which picks a concrete Sink.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuanyiying/rnr/internal/solver"
)

// StepResult is what the executor reports after attempting one Plan step.
type StepResult struct {
	Kind       solver.StepKind
	Source     string
	Target     string
	BackupPath string // set only for a completed Backup step
	DryRun     bool
	Err        error
}

// Sink receives one StepResult per executed (or, in dry-run, planned) step.
type Sink interface {
	Step(StepResult)
}

// ColorMode mirrors the CLI's --color flag.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ResolveColor decides whether w should be written to with ANSI color,
// honoring an explicit --color flag, NO_COLOR, and TERM=dumb the same way
// the teacher's output.Console.DetectColorSupport does.
func ResolveColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if f, ok := w.(*os.File); ok {
		if stat, err := f.Stat(); err != nil || stat.Mode()&os.ModeCharDevice == 0 {
			return false
		}
	} else {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// ConsoleSink prints one line per step, colorized when color is true.
type ConsoleSink struct {
	w     io.Writer
	color bool
}

// NewConsoleSink builds the Sink the CLI uses whenever --silent is not set;
// color decides between ANSI color and the plain [OK]-style symbols.
func NewConsoleSink(w io.Writer, color bool) *ConsoleSink {
	return &ConsoleSink{w: w, color: color}
}

func (s *ConsoleSink) Step(r StepResult) {
	symbol, label := "✓", ""
	if !s.color {
		symbol = "[OK]"
	}
	if r.Err != nil {
		symbol = "[ERROR]"
		if s.color {
			symbol = "✗"
		}
	}
	if r.DryRun {
		if s.color {
			symbol = "→"
		} else {
			symbol = "[DRY-RUN]"
		}
	}

	switch r.Kind {
	case solver.StepCreateParents:
		label = fmt.Sprintf("mkdir %s", r.Target)
	case solver.StepBackup:
		label = fmt.Sprintf("backup %s -> %s", r.Source, r.BackupPath)
	case solver.StepRename:
		label = fmt.Sprintf("%s -> %s", r.Source, r.Target)
	case solver.StepDelete:
		label = fmt.Sprintf("delete %s", r.Source)
	}

	line := fmt.Sprintf("%s %s", symbol, label)
	if s.color && r.Err != nil {
		line = ansiRed(line)
	} else if s.color && r.DryRun {
		line = ansiYellow(line)
	} else if s.color {
		line = ansiGreen(symbol) + " " + label
	}
	fmt.Fprintln(s.w, line)
	if r.Err != nil {
		fmt.Fprintf(s.w, "    %v\n", r.Err)
	}
}

func ansiRed(s string) string    { return "\x1b[31m" + s + "\x1b[0m" }
func ansiGreen(s string) string  { return "\x1b[32m" + s + "\x1b[0m" }
func ansiYellow(s string) string { return "\x1b[33m" + s + "\x1b[0m" }

// PlainSink prints one line per step without color and without the
// [OK]/[ERROR] markers; only dry-run lines carry a [DRY-RUN] prefix. The
// CLI does not use it; non-TTY and --color=never output goes through a
// ConsoleSink with color off.
type PlainSink struct {
	w io.Writer
}

// NewPlainSink builds an uncolored Sink.
func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: w}
}

func (s *PlainSink) Step(r StepResult) {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("[DRY-RUN] ")
	}
	switch r.Kind {
	case solver.StepCreateParents:
		fmt.Fprintf(&b, "mkdir %s", r.Target)
	case solver.StepBackup:
		fmt.Fprintf(&b, "backup %s -> %s", r.Source, r.BackupPath)
	case solver.StepRename:
		fmt.Fprintf(&b, "%s -> %s", r.Source, r.Target)
	case solver.StepDelete:
		fmt.Fprintf(&b, "delete %s", r.Source)
	}
	if r.Err != nil {
		fmt.Fprintf(&b, ": %v", r.Err)
	}
	fmt.Fprintln(s.w, b.String())
}

// NopSink discards every step — wired in for --silent.
type NopSink struct{}

func (NopSink) Step(StepResult) {}
