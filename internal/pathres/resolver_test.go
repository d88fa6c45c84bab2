package pathres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
}

func TestResolveProbeOrder(t *testing.T) {
	root := t.TempDir()
	scriptDir := filepath.Join(root, "scripts")
	programDir := filepath.Join(root, "bin")
	workDir := filepath.Join(root, "work")
	for _, d := range []string{scriptDir, programDir, workDir} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}
	r := Resolver{ScriptDir: scriptDir, ProgramDir: programDir, WorkDir: workDir}

	touch(t, filepath.Join(scriptDir, "btn.png"))
	touch(t, filepath.Join(workDir, "btn.png"))
	touch(t, filepath.Join(root, "sibling", "btn.png"))
	assert.Equal(t, filepath.Join(scriptDir, "btn.png"), r.Resolve("btn.png"))

	touch(t, filepath.Join(programDir, "menu.png"))
	touch(t, filepath.Join(workDir, "menu.png"))
	assert.Equal(t, filepath.Join(programDir, "menu.png"), r.Resolve("menu.png"))

	touch(t, filepath.Join(workDir, "only-here.png"))
	assert.Equal(t, filepath.Join(workDir, "only-here.png"), r.Resolve("only-here.png"))
}

func TestResolveFallsBackToReference(t *testing.T) {
	r := Resolver{ScriptDir: t.TempDir(), WorkDir: t.TempDir()}
	assert.Equal(t, "missing.png", r.Resolve("missing.png"))
	assert.Equal(t, filepath.Join("icons", "missing.png"), r.Resolve(filepath.Join("icons", "missing.png")))
}

func TestResolveAbsoluteUnchanged(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "nowhere.png")
	r := Resolver{ScriptDir: t.TempDir()}
	assert.Equal(t, abs, r.Resolve(abs))
	assert.Equal(t, []string{abs}, r.Candidates(abs))
}

func TestCandidatesSkipEmptyAndDuplicateDirs(t *testing.T) {
	dir := t.TempDir()
	r := Resolver{ScriptDir: dir, ProgramDir: "", WorkDir: dir}
	assert.Equal(t, []string{filepath.Join(dir, "a.png")}, r.Candidates("a.png"))
}
