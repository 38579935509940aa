package loop

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/engine"
	"github.com/ulamai/formalchip/internal/history"
	"github.com/ulamai/formalchip/internal/llmbackend"
	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/synthesis"
)

// candidateLogNames are the fixed log file names the symbiyosys
// ("engine.log") and mock ("mock.log") adapters write, checked in order
// since the uniform Engine contract doesn't expose the filename
// directly; the scripted adapters' "<name>.log" is found by the
// fallback in findEngineLog.
var candidateLogNames = []string{"engine.log", "mock.log"}

// Options configures one Run invocation.
type Options struct {
	Logger *slog.Logger
}

// Run executes the full bounded propose/prove/repair loop for cfg and
// returns the completed (terminal) RunState. The run directory and its
// journals are always written, even when the loop terminates in error,
// so that reporting/evidence can run on partial state.
func Run(cfg *config.Config, opts Options) (*model.RunState, string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	runID := NewRunID(cfg.Project.Name, time.Now())
	runDir := filepath.Join(cfg.Loop.Workdir, runID)

	recorder, err := NewRecorder(runDir)
	if err != nil {
		return nil, "", err
	}
	defer recorder.Close()

	hist, histErr := history.Open(filepath.Join(cfg.Loop.Workdir, "history.db"))
	if histErr != nil {
		logger.Warn("history index unavailable", "error", histErr)
		hist = nil
	} else {
		defer hist.Close()
	}

	state := &model.RunState{
		RunID:      runID,
		StartedAt:  time.Now().UTC(),
		Status:     "running",
		ConfigPath: cfg.ConfigPath,
	}
	if err := recorder.SaveState(state); err != nil {
		return nil, "", err
	}
	if _, err := recorder.SnapshotConfig(cfg.ConfigPath); err != nil {
		logger.Warn("config snapshot failed", "error", err)
	}
	syncHistory(hist, cfg.Project.Name, state, logger)
	// Runs ended through finalizeError also get their terminal status
	// recorded in the history index.
	defer func() {
		if state.Status == model.StatusError {
			syncHistory(hist, cfg.Project.Name, state, logger)
		}
	}()

	_ = recorder.Trace("run_started", map[string]interface{}{
		"run_id": runID, "project": cfg.Project.Name,
	})

	initial, err := BuildInitialSynthesis(cfg)
	if err != nil {
		return finalizeError(recorder, state, fmt.Errorf("building initial synthesis: %w", err))
	}
	_ = recorder.Trace("synthesis_built", map[string]interface{}{
		"clause_count":    len(initial.Clauses),
		"signal_count":    len(initial.Inputs.KnownSignalsSet()),
		"candidate_count": len(initial.Candidates),
	})

	llm, err := llmbackend.Make(cfg.LLM)
	if err != nil {
		return finalizeError(recorder, state, err)
	}
	eng, err := engine.Make(cfg.Engine)
	if err != nil {
		return finalizeError(recorder, state, err)
	}
	state.ToolVersions = map[string]string{
		"engine": eng.Name() + "/" + eng.ToolVersion(),
		"llm":    cfg.LLM.Backend,
	}

	candidates := initial.Candidates
	maxIterations := cfg.Loop.MaxIterations
	if maxIterations < 1 {
		maxIterations = 1
	}

	for i := 1; i <= maxIterations; i++ {
		iterDir := filepath.Join(runDir, fmt.Sprintf("iter_%02d", i))
		if err := os.MkdirAll(iterDir, 0o755); err != nil {
			return finalizeError(recorder, state, fmt.Errorf("creating %s: %w", iterDir, err))
		}

		propertyFile := filepath.Join(iterDir, "properties.sv")
		if err := os.WriteFile(propertyFile, []byte(synthesis.SerializeSVA(candidates)), 0o644); err != nil {
			return finalizeError(recorder, state, fmt.Errorf("writing properties for iteration %d: %w", i, err))
		}

		ctx := model.RunContext{
			RunID: runID, RunDir: runDir, Iteration: i,
			RTLFiles: cfg.Project.RTLFiles, TopModule: cfg.Project.TopModule,
			Clock: cfg.Project.Clock, Reset: cfg.Project.Reset,
			ResetActiveLow: cfg.Project.ResetActiveLow,
		}

		started := time.Now().UTC()
		result, runErr := eng.Run(model.EngineRunInput{
			Context: ctx, CandidateFile: propertyFile,
			Candidates: candidates, IterationDir: iterDir,
		})
		completed := time.Now().UTC()
		if runErr != nil {
			result.Status = model.StatusError
			result.Summary = runErr.Error()
		}

		record := model.IterationRecord{
			Index:           i,
			PropertyFile:    relPath(runDir, propertyFile),
			EngineLog:       relPath(runDir, findEngineLog(iterDir, eng.Name())),
			StartedAt:       started,
			CompletedAt:     completed,
			DurationSeconds: completed.Sub(started).Seconds(),
		}
		record.FromFeedback(result)
		state.Iterations = append(state.Iterations, record)

		if err := recorder.SaveState(state); err != nil {
			return nil, "", err
		}
		syncHistory(hist, cfg.Project.Name, state, logger)

		logger.Info("iteration completed",
			"iteration", i, "status", result.Status,
			"duration_s", record.DurationSeconds, "failed_count", len(result.FailedProps))
		_ = recorder.Trace("iteration_completed", map[string]interface{}{
			"index": i, "status": result.Status, "failed_count": len(result.FailedProps),
		})

		if result.Status == model.StatusPass {
			state.Status = model.StatusPass
			break
		}
		if result.Status == model.StatusError {
			state.Status = model.StatusError
			break
		}
		if i == maxIterations {
			state.Status = result.Status
			break
		}

		repaired, err := llm.Repair(candidates, result, initial.Clauses, initial.Libraries, initial.Inputs)
		if err != nil {
			logger.Warn("repair failed", "iteration", i, "error", err)
			state.Status = model.StatusError
			_ = recorder.Trace("repair_failed", map[string]interface{}{"iteration": i, "error": err.Error()})
			break
		}
		candidates = repaired
		_ = recorder.Trace("repair_completed", map[string]interface{}{"iteration": i, "candidate_count": len(candidates)})
	}

	completedAt := time.Now().UTC()
	state.CompletedAt = &completedAt
	if err := recorder.SaveState(state); err != nil {
		return nil, "", err
	}
	syncHistory(hist, cfg.Project.Name, state, logger)
	_ = recorder.Trace("run_completed", map[string]interface{}{"status": state.Status})

	return state, runDir, nil
}

func finalizeError(recorder *Recorder, state *model.RunState, cause error) (*model.RunState, string, error) {
	state.Status = model.StatusError
	completedAt := time.Now().UTC()
	state.CompletedAt = &completedAt
	_ = recorder.SaveState(state)
	_ = recorder.Trace("run_completed", map[string]interface{}{"status": state.Status, "error": cause.Error()})
	return state, recorder.runDir, cause
}

func syncHistory(hist *history.Store, project string, state *model.RunState, logger *slog.Logger) {
	if hist == nil {
		return
	}
	if err := hist.RecordFromState(project, state); err != nil {
		logger.Warn("history sync failed", "error", err)
	}
}

// findEngineLog returns the first existing candidate log path for the
// engine named engineName, falling back to "<engineName>.log".
func findEngineLog(iterDir, engineName string) string {
	names := append([]string{}, candidateLogNames...)
	names = append(names, engineName+".log")
	for _, n := range names {
		p := filepath.Join(iterDir, n)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(iterDir, engineName+".log")
}

func relPath(base, target string) string {
	if target == "" {
		return ""
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}
