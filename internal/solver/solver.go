package solver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// maxTempNameAttempts bounds how many candidate temporary names the
// cycle-breaker tries in one directory before giving up and reporting the
// batch unresolvable, per spec.md §4.3 failure modes.
const maxTempNameAttempts = 16

type node struct {
	idx    int
	op     Operation
	key    string // canonical (case-folded if needed) target key
	srcKey string // canonical (case-folded if needed) source key
}

// Solve validates batch against fs and, if it is safe, returns an ordered
// Plan. Otherwise it returns every Conflict it found — never just the
// first — so a dry run can show the whole picture in one pass.
func Solve(batch *Batch, fs FS) (*Plan, []Conflict) {
	ops := batch.Operations
	if len(ops) == 0 {
		return &Plan{}, nil
	}

	nodes := make([]node, len(ops))
	var conflicts []Conflict

	// Same-file detection happens before anything else (spec.md §4.3): an
	// operation whose source and target are literally the same filesystem
	// object is either a legitimate case-only rename (kept) or, when it
	// differs by more than case, a same-file pair that is treated as an
	// identity and dropped without a conflict.
	live := make([]bool, len(ops))
	for i, op := range ops {
		live[i] = true
		if fs.Exists(op.Target) && fs.SameFile(op.Source, op.Target) {
			if !strings.EqualFold(op.Source, op.Target) || op.Source == op.Target {
				// Not a case-only variation (e.g. a hard link under an
				// unrelated name, or a no-op that slipped past NewBatch):
				// drop it like an identity pair.
				live[i] = false
			}
		}
	}

	// Source-missing: every remaining operation's source must exist.
	for i, op := range ops {
		if !live[i] {
			continue
		}
		if !fs.Exists(op.Source) {
			conflicts = append(conflicts, Conflict{Kind: ConflictSourceMissing, Operation: op, Path: op.Source})
			live[i] = false
		}
	}

	// Canonical keys, folded by the case sensitivity of the relevant directory.
	for i, op := range ops {
		nodes[i] = node{idx: i, op: op}
		if !live[i] {
			continue
		}
		srcInsensitive, err := fs.CaseInsensitive(filepath.Dir(op.Source))
		if err != nil {
			srcInsensitive = false
		}
		tgtInsensitive, err := fs.CaseInsensitive(filepath.Dir(op.Target))
		if err != nil {
			tgtInsensitive = false
		}
		nodes[i].srcKey = canonicalKey(op.Source, srcInsensitive)
		nodes[i].key = canonicalKey(op.Target, tgtInsensitive)
	}

	// Duplicate-target: two or more live operations claiming the same target.
	targetGroups := map[string][]int{}
	for i := range ops {
		if !live[i] {
			continue
		}
		targetGroups[nodes[i].key] = append(targetGroups[nodes[i].key], i)
	}
	for _, idxs := range targetGroups {
		if len(idxs) <= 1 {
			continue
		}
		for _, i := range idxs {
			conflicts = append(conflicts, Conflict{Kind: ConflictDuplicateTarget, Operation: ops[i], Path: ops[i].Target})
			live[i] = false
		}
	}

	// Source key lookup, for both the in-batch check below and graph edges.
	bySourceKey := map[string]int{}
	for i := range ops {
		if live[i] {
			bySourceKey[nodes[i].srcKey] = i
		}
	}

	// Target-exists / symlink-conflict: a live operation's target exists on
	// disk, isn't the same file as its source, and isn't about to be
	// vacated by another operation in this batch.
	for i := range ops {
		if !live[i] {
			continue
		}
		op := ops[i]
		if !fs.Exists(op.Target) {
			continue
		}
		if fs.SameFile(op.Source, op.Target) {
			continue // case-only rename onto itself, already validated above
		}
		if _, inBatch := bySourceKey[nodes[i].key]; inBatch {
			continue // target will be vacated by another operation first
		}
		if fs.IsSymlink(op.Target) {
			conflicts = append(conflicts, Conflict{Kind: ConflictSymlinkConflict, Operation: op, Path: op.Target})
		} else {
			conflicts = append(conflicts, Conflict{Kind: ConflictTargetExists, Operation: op, Path: op.Target})
		}
		live[i] = false
	}

	// Parent-conflict: target's required parent path already exists as
	// something other than a directory.
	for i := range ops {
		if !live[i] {
			continue
		}
		if c := checkParentConflict(ops[i].Target, fs); c != nil {
			c.Operation = ops[i]
			conflicts = append(conflicts, *c)
			live[i] = false
		}
	}

	if len(conflicts) > 0 {
		return nil, conflicts
	}

	return order(ops, nodes, live, batch.Mode, fs)
}

// checkParentConflict walks up target's ancestor chain to the first path
// that exists on disk; if that path is not a directory, the rename can
// never succeed no matter what CreateParents step precedes it.
func checkParentConflict(target string, fs FS) *Conflict {
	dir := filepath.Dir(target)
	for {
		if dir == "." || dir == string(filepath.Separator) || dir == "" {
			return nil
		}
		if fs.Exists(dir) {
			if !fs.IsDir(dir) {
				return &Conflict{Kind: ConflictParentConflict, Path: dir}
			}
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// canonicalKey folds path to lowercase when the containing filesystem is
// case-insensitive, so two operations that differ only in case collide in
// the same way the real filesystem would collide them.
func canonicalKey(path string, insensitive bool) string {
	if insensitive {
		return strings.ToLower(path)
	}
	return path
}

// order topologically sorts the live operations into rename Steps (edge A->B
// when A.Source == B.Target, meaning A must run first), breaking any cycle
// by routing the lowest-indexed member of the cycle through a temporary
// name, then prepends CreateParents/Backup steps as required.
func order(ops []Operation, nodes []node, live []bool, mode Mode, fs FS) (*Plan, []Conflict) {
	n := len(ops)
	indegree := make([]int, n)
	adj := make([][]int, n)

	bySourceKey := map[string]int{}
	for i := range ops {
		if live[i] {
			bySourceKey[nodes[i].srcKey] = i
		}
	}
	for i := range ops {
		if !live[i] {
			continue
		}
		// j's source occupies the path i wants to move into: j must vacate
		// it first, so the edge runs j -> i (j before i), not the reverse.
		if j, ok := bySourceKey[nodes[i].key]; ok && j != i {
			adj[j] = append(adj[j], i)
			indegree[i]++
		}
	}

	done := make([]bool, n)
	vacated := make([]bool, n)
	tempOf := make([]string, n)
	var renameSteps []Step
	var backupEligible []bool // parallel to renameSteps: false for a cycle-breaker's temp->Target landing
	var conflicts []Conflict

	remainingCount := 0
	for i := range ops {
		if live[i] {
			remainingCount++
		} else {
			done[i] = true
		}
	}

	for remainingCount > 0 {
		ready := []int{}
		for i := range ops {
			if !done[i] && indegree[i] == 0 {
				ready = append(ready, i)
			}
		}
		sort.Ints(ready)

		if len(ready) == 0 {
			breaker := -1
			for i := range ops {
				if !done[i] && !vacated[i] {
					breaker = i
					break
				}
			}
			if breaker == -1 {
				conflicts = append(conflicts, Conflict{Kind: ConflictUnresolvableCycle})
				return nil, conflicts
			}
			temp, ok := generateTempName(filepath.Dir(ops[breaker].Source), fs)
			if !ok {
				conflicts = append(conflicts, Conflict{Kind: ConflictUnresolvableCycle, Operation: ops[breaker], Path: ops[breaker].Source})
				return nil, conflicts
			}
			tempOf[breaker] = temp
			vacated[breaker] = true
			renameSteps = append(renameSteps, Step{Kind: StepRename, Source: ops[breaker].Source, Target: temp})
			backupEligible = append(backupEligible, true)
			for _, j := range adj[breaker] {
				indegree[j]--
			}
			continue
		}

		for _, i := range ready {
			if vacated[i] {
				renameSteps = append(renameSteps, Step{Kind: StepRename, Source: tempOf[i], Target: ops[i].Target})
				backupEligible = append(backupEligible, false)
			} else {
				renameSteps = append(renameSteps, Step{Kind: StepRename, Source: ops[i].Source, Target: ops[i].Target})
				backupEligible = append(backupEligible, true)
				for _, j := range adj[i] {
					indegree[j]--
				}
			}
			done[i] = true
			remainingCount--
		}
	}

	plan := &Plan{}
	createdParents := map[string]bool{}
	for idx, step := range renameSteps {
		parent := filepath.Dir(step.Target)
		if parent != "." && parent != "/" && !createdParents[parent] && !fs.Exists(parent) {
			plan.Steps = append(plan.Steps, Step{Kind: StepCreateParents, Target: parent})
			createdParents[parent] = true
		}
		if mode.Backup && backupEligible[idx] {
			// Target is left empty: the backup destination must be
			// disambiguated against on-disk state at execution time
			// (fileutil.BackupPath), since earlier steps in this very
			// Plan can create files that a pre-computed path would collide
			// with.
			plan.Steps = append(plan.Steps, Step{Kind: StepBackup, Source: step.Source})
		}
		plan.Steps = append(plan.Steps, step)
	}

	return plan, nil
}

// generateTempName proposes a sibling name in dir that doesn't collide with
// anything currently on disk, trying up to maxTempNameAttempts
// uuid-derived short hex suffixes before giving up.
func generateTempName(dir string, fs FS) (string, bool) {
	for attempt := 0; attempt < maxTempNameAttempts; attempt++ {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		candidate := filepath.Join(dir, ".rnr-tmp-"+suffix)
		if !fs.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
