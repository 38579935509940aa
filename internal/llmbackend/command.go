package llmbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ulamai/formalchip/internal/model"
)

// CommandBackend shells out to an external tool, feeding it a JSON payload
// on stdin and expecting a JSON {"candidates": [...]} response on stdout.
type CommandBackend struct {
	Command string
	Timeout time.Duration
}

// NewCommandBackend returns a CommandBackend with the package default
// timeout; callers may override Timeout directly.
func NewCommandBackend(command string) *CommandBackend {
	return &CommandBackend{Command: command, Timeout: 60 * time.Second}
}

type synthesisInputsWire struct {
	Clock          string   `json:"clock"`
	Reset          string   `json:"reset"`
	ResetActiveLow bool     `json:"reset_active_low"`
	KnownSignals   []string `json:"known_signals"`
}

func wireInputs(inputs *model.SynthesisInputs) synthesisInputsWire {
	known := inputs.KnownSignalsSet()
	names := make([]string, 0, len(known))
	for n := range known {
		names = append(names, n)
	}
	sort.Strings(names)
	return synthesisInputsWire{
		Clock:          inputs.Clock,
		Reset:          inputs.Reset,
		ResetActiveLow: inputs.ResetActiveLow,
		KnownSignals:   names,
	}
}

type proposePayload struct {
	Mode             string                  `json:"mode"`
	Clauses          []model.SpecClause      `json:"clauses"`
	Libraries        []model.LibraryPattern  `json:"libraries"`
	SynthesisInputs  synthesisInputsWire     `json:"synthesis_inputs"`
}

type repairPayload struct {
	Mode            string                   `json:"mode"`
	Current         []model.PropertyCandidate `json:"current"`
	Feedback        model.IterationFeedback   `json:"feedback"`
	Clauses         []model.SpecClause        `json:"clauses"`
	Libraries       []model.LibraryPattern    `json:"libraries"`
	SynthesisInputs synthesisInputsWire       `json:"synthesis_inputs"`
}

func (b *CommandBackend) Propose(clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error) {
	payload := proposePayload{
		Mode:            "propose",
		Clauses:         clauses,
		Libraries:       libraries,
		SynthesisInputs: wireInputs(inputs),
	}
	return b.call(payload)
}

func (b *CommandBackend) Repair(current []model.PropertyCandidate, feedback model.IterationFeedback, clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error) {
	payload := repairPayload{
		Mode:            "repair",
		Current:         current,
		Feedback:        feedback,
		Clauses:         clauses,
		Libraries:       libraries,
		SynthesisInputs: wireInputs(inputs),
	}
	return b.call(payload)
}

type candidatesResponse struct {
	Candidates []model.PropertyCandidate `json:"candidates"`
}

func (b *CommandBackend) call(payload interface{}) ([]model.PropertyCandidate, error) {
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling LLM command payload: %w", err)
	}

	stdout, _, err := b.run(input)
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, fmt.Errorf("LLM command did not emit valid JSON: %w", err)
	}
	if err := validateCandidatesResponse(raw); err != nil {
		return nil, fmt.Errorf("LLM command response violated candidates schema: %w", err)
	}

	var resp candidatesResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return nil, fmt.Errorf("decoding LLM command response: %w", err)
	}
	return resp.Candidates, nil
}

// run starts the configured command, writes input to its stdin from an
// errgroup goroutine while stdout/stderr collect into buffers, killing
// the whole process group if the timeout elapses before the command exits.
func (b *CommandBackend) run(input []byte) (stdout, stderr []byte, err error) {
	argv := strings.Fields(b.Command)
	if len(argv) == 0 {
		return nil, nil, fmt.Errorf("llm command is empty")
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM command stdin pipe: %w", err)
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting LLM command: %w", err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stdinPipe.Close()
		_, werr := stdinPipe.Write(input)
		return werr
	})

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	if err := g.Wait(); err != nil {
		killProcessGroup(cmd.Process)
		<-waitErr
		return nil, nil, fmt.Errorf("writing LLM command stdin: %w", err)
	}

	select {
	case <-ctx.Done():
		killProcessGroup(cmd.Process)
		<-waitErr
		return nil, nil, ctx.Err()
	case err := <-waitErr:
		if err != nil {
			return nil, nil, fmt.Errorf("LLM command failed: %s", strings.TrimSpace(errBuf.String()))
		}
		return outBuf.Bytes(), errBuf.Bytes(), nil
	}
}

// killProcessGroup sends SIGTERM to the process group, escalating to
// SIGKILL after a short grace period. The caller is responsible for
// reaping the process via cmd.Wait().
func killProcessGroup(process *os.Process) {
	if process == nil {
		return
	}
	_ = syscall.Kill(-process.Pid, syscall.SIGTERM)
	go func() {
		time.Sleep(3 * time.Second)
		_ = syscall.Kill(-process.Pid, syscall.SIGKILL)
	}()
}
