package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulamai/formalchip/internal/logparse"
	"github.com/ulamai/formalchip/internal/model"
)

// MockEngine fails every iteration before PassAfter and passes from then
// on, writing a synthetic log so the rest of the pipeline (log parsing,
// reporting, evidence) exercises real code paths without a formal tool.
type MockEngine struct {
	PassAfter int
}

func NewMockEngine(passAfter int) *MockEngine {
	if passAfter < 1 {
		passAfter = 1
	}
	return &MockEngine{PassAfter: passAfter}
}

func (e *MockEngine) Name() string        { return "mock" }
func (e *MockEngine) ToolVersion() string { return "mock-engine/1.0" }

func (e *MockEngine) Run(input model.EngineRunInput) (model.FormalResult, error) {
	logPath := filepath.Join(input.IterationDir, "mock.log")

	var names []string
	for i, c := range input.Candidates {
		if i >= 3 {
			break
		}
		names = append(names, c.Name)
	}

	var lines []string
	if input.Context.Iteration < e.PassAfter {
		name := "p0"
		if len(names) > 0 {
			name = names[0]
		}
		lines = []string{
			"STATUS: FAILED",
			fmt.Sprintf("assertion %s failed", name),
			"counterexample: req=1 ack=0 for 4 cycles",
		}
	} else {
		lines = []string{
			"STATUS: PASSED",
			"all properties proven",
		}
	}

	if err := os.MkdirAll(input.IterationDir, 0o755); err != nil {
		return model.FormalResult{}, fmt.Errorf("creating iteration dir: %w", err)
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return model.FormalResult{}, fmt.Errorf("writing mock log: %w", err)
	}

	return logparse.ParseLog(logPath)
}
