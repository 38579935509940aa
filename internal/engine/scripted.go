package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulamai/formalchip/internal/logparse"
	"github.com/ulamai/formalchip/internal/model"
)

// ScriptedEngine shells out to any user-provided command, passing run
// context through FORMALCHIP_* environment variables rather than a fixed
// CLI contract.
type ScriptedEngine struct {
	NameValue string
	Command   string
	TimeoutS  int
}

func NewScriptedEngine(name, command string, timeoutS int) *ScriptedEngine {
	if timeoutS <= 0 {
		timeoutS = 1800
	}
	return &ScriptedEngine{NameValue: name, Command: command, TimeoutS: timeoutS}
}

func (e *ScriptedEngine) Name() string { return e.NameValue }

func (e *ScriptedEngine) ToolVersion() string {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return e.NameValue + ":invalid-command"
	}
	base := argv[0]
	rc, out, errOut := runCommand([]string{base, "--version"}, "", 20*time.Second)
	if rc == 0 || rc == -1 {
		combined := out
		if strings.TrimSpace(combined) == "" {
			combined = errOut
		}
		lines := strings.Split(strings.TrimSpace(combined), "\n")
		if len(lines) > 0 && lines[0] != "" {
			return lines[0]
		}
	}
	return base + ":version-unavailable"
}

func (e *ScriptedEngine) Run(input model.EngineRunInput) (model.FormalResult, error) {
	logPath := filepath.Join(input.IterationDir, e.NameValue+".log")
	if err := os.MkdirAll(input.IterationDir, 0o755); err != nil {
		return model.FormalResult{}, fmt.Errorf("creating iteration dir: %w", err)
	}

	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return model.FormalResult{}, fmt.Errorf("scripted engine command is empty")
	}

	env := append(os.Environ(),
		"FORMALCHIP_PROPERTY_FILE="+input.CandidateFile,
		"FORMALCHIP_TOP="+input.Context.TopModule,
		"FORMALCHIP_RTL_FILES="+strings.Join(input.Context.RTLFiles, string(os.PathListSeparator)),
	)

	rc, out, errOut := runCommandWithEnv(argv, input.IterationDir, env, time.Duration(e.TimeoutS)*time.Second)
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
	if rc != 0 && result.Status == model.StatusUnknown {
		result.Status = model.StatusError
		result.Summary = fmt.Sprintf("status=error, returncode=%d", rc)
	}
	return result, nil
}
