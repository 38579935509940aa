// Package evidence builds the content-addressed manifest and gzip-tar
// archive that make a completed (or errored) run independently
// auditable after the fact.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/report"
)

// FileEntry is one manifest row: a run-relative path, its SHA-256, and
// its size in bytes.
type FileEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// RuntimeFacts captures the platform/interpreter facts gathered at
// manifest build time, for postmortem reproducibility questions.
type RuntimeFacts struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Go       string `json:"go_version"`
}

// Manifest is evidence/manifest.json's shape.
type Manifest struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	RunDir       string             `json:"run_dir"`
	ConfigPath   string             `json:"config_path"`
	ConfigSHA256 string             `json:"config_sha256"`
	ToolVersions map[string]string  `json:"tool_versions,omitempty"`
	Runtime      RuntimeFacts       `json:"runtime"`
	Gate         report.GateVerdict `json:"gate_verdict"`
	Files        []FileEntry        `json:"files"`
}

// tarballExt marks the evidence tarball itself, excluded from its own
// manifest's file list.
const tarballExt = ".tar.gz"

// manifestRelPath is excluded from its own file list so that rebuilding
// the manifest over an already-evidenced run directory is idempotent
// (spec.md §8: identical manifest content apart from generated_at).
const manifestRelPath = "evidence/manifest.json"

func sha256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// BuildManifest walks runDir, hashing every file except *.tar.gz
// archives and evidence/manifest.json itself, and assembles the manifest. gate is the already-evaluated
// gate verdict for this run.
func BuildManifest(runDir string, state *model.RunState, gate report.GateVerdict, now time.Time) (*Manifest, error) {
	var files []FileEntry
	err := filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, tarballExt) {
			return nil
		}
		rel, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		if filepath.ToSlash(rel) == manifestRelPath {
			return nil
		}
		sum, size, err := sha256File(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", rel, err)
		}
		files = append(files, FileEntry{Path: filepath.ToSlash(rel), SHA256: sum, Size: size})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking run dir %s: %w", runDir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var configSHA string
	if state.ConfigPath != "" {
		if sum, _, err := sha256File(state.ConfigPath); err == nil {
			configSHA = sum
		}
	}

	return &Manifest{
		GeneratedAt:  now,
		RunDir:       runDir,
		ConfigPath:   state.ConfigPath,
		ConfigSHA256: configSHA,
		ToolVersions: state.ToolVersions,
		Runtime:      RuntimeFacts{Platform: runtime.GOOS, Arch: runtime.GOARCH, Go: runtime.Version()},
		Gate:         gate,
		Files:        files,
	}, nil
}

// WriteManifest writes evidence/manifest.json under runDir.
func WriteManifest(runDir string, manifest *Manifest) (string, error) {
	dir := filepath.Join(runDir, "evidence")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "manifest.json")
	return path, os.WriteFile(path, data, 0o644)
}
