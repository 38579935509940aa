package engine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ulamai/formalchip/internal/logparse"
	"github.com/ulamai/formalchip/internal/model"
)

// SymbiYosysEngine drives the `sby` formal verification front end against
// a rendered (or default) .sby script.
type SymbiYosysEngine struct {
	Command  string
	SBYFile  string
	TimeoutS int
}

func NewSymbiYosysEngine(command, sbyFile string, timeoutS int) *SymbiYosysEngine {
	if command == "" {
		command = "sby"
	}
	if timeoutS <= 0 {
		timeoutS = 600
	}
	return &SymbiYosysEngine{Command: command, SBYFile: sbyFile, TimeoutS: timeoutS}
}

func (e *SymbiYosysEngine) Name() string { return "symbiyosys" }

func (e *SymbiYosysEngine) ToolVersion() string {
	exe, err := exec.LookPath(e.Command)
	if err != nil {
		return e.Command + ":not-found"
	}
	rc, out, errOut := runCommand([]string{exe, "--version"}, "", 30*time.Second)
	if rc == 0 {
		combined := out
		if strings.TrimSpace(combined) == "" {
			combined = errOut
		}
		lines := strings.Split(strings.TrimSpace(combined), "\n")
		if len(lines) > 0 && lines[0] != "" {
			return lines[0]
		}
		return e.Command + ":ok"
	}
	return e.Command + ":version-error"
}

func (e *SymbiYosysEngine) Run(input model.EngineRunInput) (model.FormalResult, error) {
	iterDir := input.IterationDir
	sbyPath := filepath.Join(iterDir, "run.sby")
	logPath := filepath.Join(iterDir, "engine.log")

	if err := os.MkdirAll(iterDir, 0o755); err != nil {
		return model.FormalResult{}, fmt.Errorf("creating iteration dir: %w", err)
	}

	var rendered string
	if e.SBYFile != "" {
		template, err := os.ReadFile(e.SBYFile)
		if err != nil {
			return model.FormalResult{}, fmt.Errorf("reading sby template %s: %w", e.SBYFile, err)
		}
		rendered = renderSBY(string(template), input.Context.TopModule, input.CandidateFile, input.Context.RTLFiles)
	} else {
		rendered = defaultSBY(input.Context.TopModule, input.CandidateFile, input.Context.RTLFiles)
	}
	if err := os.WriteFile(sbyPath, []byte(rendered), 0o644); err != nil {
		return model.FormalResult{}, fmt.Errorf("writing %s: %w", sbyPath, err)
	}

	rc, out, errOut := runCommand([]string{e.Command, "-f", sbyPath}, iterDir, time.Duration(e.TimeoutS)*time.Second)
	logContent := out
	if logContent != "" {
		logContent += "\n"
	}
	logContent += errOut
	if err := os.WriteFile(logPath, []byte(logContent), 0o644); err != nil {
		return model.FormalResult{}, fmt.Errorf("writing %s: %w", logPath, err)
	}

	result, err := logparse.ParseLog(logPath)
	if err != nil {
		return model.FormalResult{}, err
	}

	artifacts, err := collectSBYArtifacts(iterDir)
	if err != nil {
		return model.FormalResult{}, err
	}
	result.ArtifactFiles = artifacts

	if rc != 0 && result.Status == model.StatusUnknown {
		result.Status = model.StatusError
		result.Summary = fmt.Sprintf("status=error, returncode=%d", rc)
	}
	return result, nil
}

func renderSBY(template, top, propertyFile string, rtlFiles []string) string {
	r := strings.NewReplacer(
		"{{TOP_MODULE}}", top,
		"{{PROPERTY_FILE}}", propertyFile,
		"{{RTL_FILES}}", strings.Join(rtlFiles, "\n"),
	)
	return r.Replace(template)
}

func defaultSBY(top, propertyFile string, rtlFiles []string) string {
	files := append(append([]string{}, rtlFiles...), propertyFile)
	var scriptReads strings.Builder
	for _, f := range files {
		scriptReads.WriteString("read -formal " + f + "\n")
	}
	return fmt.Sprintf(`[options]
mode prove
depth 20

[engines]
smtbmc

[script]
%sprep -top %s

[files]
%s
`, scriptReads.String(), top, strings.Join(files, "\n"))
}

var sbyArtifactExts = map[string]bool{
	".vcd": true, ".yw": true, ".aiw": true, ".cex": true,
	".json": true, ".smtc": true, ".txt": true,
}

// collectSBYArtifacts copies witness-like output files into
// artifacts/witnesses (preserving relative subpaths) and returns their
// iteration-relative paths in sorted order.
func collectSBYArtifacts(iterDir string) ([]string, error) {
	var srcFiles []string
	err := filepath.WalkDir(iterDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == "engine.log" || name == "run.sby" || name == "properties.sv" {
			return nil
		}
		lowerName := strings.ToLower(name)
		ext := strings.ToLower(filepath.Ext(name))
		if sbyArtifactExts[ext] || strings.Contains(lowerName, "trace") || strings.Contains(lowerName, "witness") {
			srcFiles = append(srcFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking iteration dir for artifacts: %w", err)
	}
	if len(srcFiles) == 0 {
		return nil, nil
	}
	sort.Strings(srcFiles)

	dstRoot := filepath.Join(iterDir, "artifacts", "witnesses")
	var out []string
	for _, src := range srcFiles {
		rel, err := filepath.Rel(iterDir, src)
		if err != nil {
			return nil, err
		}
		dst := filepath.Join(dstRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, err
		}
		if src != dst {
			if err := copyFile(src, dst); err != nil {
				return nil, fmt.Errorf("copying artifact %s: %w", src, err)
			}
		}
		relOut, err := filepath.Rel(iterDir, dst)
		if err != nil {
			return nil, err
		}
		out = append(out, relOut)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// runCommand runs argv with an optional working directory and timeout,
// returning the exit code and captured stdout/stderr.
func runCommand(argv []string, cwd string, timeout time.Duration) (int, string, string) {
	return runCommandWithEnv(argv, cwd, nil, timeout)
}

// runCommandWithEnv is runCommand plus an explicit environment; a nil env
// means "inherit the current process environment" via exec.Cmd's default.
func runCommandWithEnv(argv []string, cwd string, env []string, timeout time.Duration) (int, string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 3 * time.Second
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	rc := 0
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return -1, outBuf.String(), "command timed out after " + timeout.String()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		} else {
			rc = -1
		}
	}
	return rc, outBuf.String(), errBuf.String()
}
