package evidence

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/report"
)

func sha256Hex(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TestBuildManifest_ListsEveryFileWithMatchingSHA256 is spec.md §8
// invariant 6: the manifest lists every file in the run directory except
// the tarball itself, and every listed SHA-256 matches the file's content.
func TestBuildManifest_ListsEveryFileWithMatchingSHA256(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"run_id":"r1"}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "iter_01"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iter_01", "properties.sv"), []byte("property p1; 1'b1 |-> 1'b1; endproperty"), 0o644))

	state := &model.RunState{RunID: "r1"}
	gate := report.GateVerdict{Passed: true}

	manifest, err := BuildManifest(dir, state, gate, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, manifest.Files, 2)

	byPath := map[string]FileEntry{}
	for _, f := range manifest.Files {
		byPath[f.Path] = f
	}
	require.Contains(t, byPath, "state.json")
	require.Contains(t, byPath, "iter_01/properties.sv")
	assert.Equal(t, sha256Hex(t, filepath.Join(dir, "state.json")), byPath["state.json"].SHA256)
	assert.Equal(t, sha256Hex(t, filepath.Join(dir, "iter_01", "properties.sv")), byPath["iter_01/properties.sv"].SHA256)
}

// TestBuildManifest_SelfExcludesOwnManifest ensures rebuilding the
// manifest over an already-evidenced run directory stays idempotent
// (spec.md §8 round-trip/idempotence) by never hashing its own output.
func TestBuildManifest_SelfExcludesOwnManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{}"), 0o644))
	state := &model.RunState{RunID: "r1"}
	gate := report.GateVerdict{}

	first, err := BuildManifest(dir, state, gate, time.Now().UTC())
	require.NoError(t, err)
	_, err = WriteManifest(dir, first)
	require.NoError(t, err)

	second, err := BuildManifest(dir, state, gate, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, second.Files, 1)
	assert.Equal(t, "state.json", second.Files[0].Path)
}

func TestBuildEvidencePack_TarballExcludesItselfAndIncludesState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"run_id":"r1"}`), 0o644))

	state := &model.RunState{RunID: "r1"}
	gate := report.GateVerdict{Passed: true}

	archivePath, err := BuildEvidencePack(dir, state, gate)
	require.NoError(t, err)
	require.FileExists(t, archivePath)

	names := readTarNames(t, archivePath)
	assert.Contains(t, names, "state.json")
	assert.Contains(t, names, "evidence/manifest.json")
	for _, n := range names {
		assert.NotEqual(t, TarballName("r1"), filepath.Base(n))
	}
}

func readTarNames(t *testing.T, archivePath string) []string {
	t.Helper()
	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}
