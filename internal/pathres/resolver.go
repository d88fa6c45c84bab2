// Package pathres resolves relative image references against the directories
// a script author is likely to have meant.
package pathres

import (
	"path/filepath"

	"github.com/jeeftor/rpa-runner/internal/filesystem"
)

// Resolver probes ScriptDir, then ProgramDir, then WorkDir. Empty entries are skipped.
type Resolver struct {
	ScriptDir  string
	ProgramDir string
	WorkDir    string
}

// Candidates lists the paths Resolve probes for ref, in order
func (r Resolver) Candidates(ref string) []string {
	if ref == "" || filepath.IsAbs(ref) {
		return []string{ref}
	}

	var out []string
	seen := make(map[string]bool, 3)
	for _, dir := range []string{r.ScriptDir, r.ProgramDir, r.WorkDir} {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, ref)
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out
}

// Resolve returns ref unchanged when absolute, otherwise the first existing
// candidate, otherwise ref unchanged so the caller can report it as missing.
func (r Resolver) Resolve(ref string) string {
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	for _, candidate := range r.Candidates(ref) {
		if filesystem.FileExists(candidate) {
			return candidate
		}
	}
	return ref
}
