package evidence

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/report"
)

// TarballName is the evidence archive's file name within runDir/evidence,
// exported so callers can predict the archive path before it exists (the
// gate verdict needs the expected path before the archive is built).
func TarballName(runID string) string {
	return fmt.Sprintf("formalchip-evidence-%s.tar.gz", runID)
}

// BuildEvidencePack writes evidence/manifest.json and the gzip-tar
// archive of the whole run directory (excluding the archive itself),
// returning the archive's path. Called on every terminal state,
// including error, so postmortem is always possible (spec.md §7).
func BuildEvidencePack(runDir string, state *model.RunState, gate report.GateVerdict) (string, error) {
	now := time.Now().UTC()

	manifest, err := BuildManifest(runDir, state, gate, now)
	if err != nil {
		return "", err
	}
	if _, err := WriteManifest(runDir, manifest); err != nil {
		return "", err
	}

	archivePath := filepath.Join(runDir, "evidence", TarballName(state.RunID))
	if err := writeTarGz(runDir, archivePath); err != nil {
		return "", err
	}
	return archivePath, nil
}

// writeTarGz tars+gzips every file under runDir except destPath itself
// (and any other .tar.gz, since only one archive belongs per run).
func writeTarGz(runDir, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating evidence archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	return filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == destPath {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, tarballExt) {
			return nil
		}

		rel, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
