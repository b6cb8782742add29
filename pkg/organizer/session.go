package organizer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deeporg/deeporg/pkg/logger"
)

// DefaultMaxIterations caps the number of tool calls a single run may
// spend before it is forcibly failed.
const DefaultMaxIterations = 250

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionConfig fixes everything a run needs up front. A session never
// reads ambient process state such as the working directory.
type SessionConfig struct {
	// RootDirectory is the only directory the run may touch.
	RootDirectory string

	// Exclusions lists names the run must neither show nor move. The
	// zero value means the built-in defaults.
	Exclusions ExclusionSet

	// MaxReadBytes bounds read_file previews. Zero means the default.
	MaxReadBytes int

	// MaxIterations bounds tool calls per run. Zero means the default.
	MaxIterations int

	// DryRun simulates mutations instead of performing them. Organize
	// can override it per run.
	DryRun bool

	// Model names the backing model, for logs and summaries only.
	Model string
}

// Outcome is one tool invocation as observed by the session: which tool
// ran, whether it succeeded, and the message handed back to the model.
type Outcome struct {
	Tool    string
	OK      bool
	Kind    ErrKind
	Message string
}

// OutcomeOf folds a tool's message-or-error pair into an Outcome.
func OutcomeOf(tool, msg string, err error) Outcome {
	if err != nil {
		return Outcome{Tool: tool, Kind: KindOf(err), Message: err.Error()}
	}
	return Outcome{Tool: tool, OK: true, Message: msg}
}

// RunResult is the complete report of one organizing run. Failures are
// carried here rather than raised: Success false always comes with a
// non-empty Err and a kind.
type RunResult struct {
	RunID      string
	Success    bool
	Message    string
	Transcript []Outcome
	Kind       ErrKind
	Err        string
	Iterations int
	DryRun     bool
	Duration   time.Duration
}

// RunBinding is everything the session lends an orchestrator for the
// duration of one run. Observe is invoked after every tool call, in
// order; it must not be retained past the run.
type RunBinding struct {
	Ops           *FileOps
	MaxIterations int
	Observe       func(Outcome)
}

// Orchestrator drives the model side of a run. The session treats it as
// an external collaborator: Ready is the preflight (credentials,
// connectivity), Run blocks until the model declares the work done or a
// bounded failure occurs. Run reports how many tool calls were spent.
type Orchestrator interface {
	Ready(ctx context.Context) error
	Run(ctx context.Context, binding RunBinding) (finalMessage string, toolCalls int, err error)
}

// Session owns one target directory and runs at most one operation at a
// time. Starting work while other work is active is rejected, never
// queued.
type Session struct {
	id   string
	cfg  SessionConfig
	orch Orchestrator

	mu       sync.Mutex
	state    State
	progress func(Outcome)
}

// NewSession validates the configuration and binds it to an orchestrator.
// The orchestrator may be nil for preview-only sessions.
func NewSession(cfg SessionConfig, orch Orchestrator) (*Session, error) {
	if cfg.RootDirectory == "" {
		return nil, E(KindIOFailure, "root directory is required")
	}
	if cfg.MaxReadBytes <= 0 {
		cfg.MaxReadBytes = DefaultMaxReadBytes
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Session{
		id:    uuid.NewString(),
		cfg:   cfg,
		orch:  orch,
		state: StateIdle,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns a copy of the normalized configuration.
func (s *Session) Config() SessionConfig { return s.cfg }

// SetProgress installs a per-outcome callback. It must be set before
// Organize is called and is invoked on the run's goroutine.
func (s *Session) SetProgress(fn func(Outcome)) {
	s.mu.Lock()
	s.progress = fn
	s.mu.Unlock()
}

// Preview lists the directory as the agent would see it, without
// consulting the model. It is rejected while a run is active.
func (s *Session) Preview() ([]ListingEntry, error) {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StatePreviewing {
		s.mu.Unlock()
		return nil, E(KindAlreadyRunning, "session %s is busy", s.id)
	}
	prior := s.state
	s.state = StatePreviewing
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == StatePreviewing {
			s.state = prior
		}
		s.mu.Unlock()
	}()

	if err := s.checkRoot(); err != nil {
		return nil, err
	}
	ops, err := NewFileOps(s.cfg.RootDirectory, s.cfg.Exclusions, s.cfg.MaxReadBytes, true)
	if err != nil {
		return nil, err
	}
	return ops.List()
}

// Organize performs one full run and reports the result. It never
// panics and never returns a Go error: every failure mode lands in the
// RunResult with its kind set. A session can be re-run after it has
// completed or failed; only a concurrent start is rejected.
func (s *Session) Organize(ctx context.Context, dryRun bool) RunResult {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StatePreviewing {
		busy := s.state
		s.mu.Unlock()
		return RunResult{
			RunID:  uuid.NewString(),
			Kind:   KindAlreadyRunning,
			Err:    fmt.Sprintf("session %s is busy (%s)", s.id, busy),
			DryRun: dryRun,
		}
	}
	s.state = StateRunning
	s.mu.Unlock()

	res := s.run(ctx, dryRun)

	s.mu.Lock()
	if res.Success {
		s.state = StateCompleted
	} else {
		s.state = StateFailed
	}
	s.mu.Unlock()
	return res
}

func (s *Session) run(ctx context.Context, dryRun bool) RunResult {
	start := time.Now()
	res := RunResult{RunID: uuid.NewString(), DryRun: dryRun}

	fail := func(err error) RunResult {
		res.Kind = KindOf(err)
		res.Err = err.Error()
		res.Duration = time.Since(start)
		logger.WarnCF("session", "Run failed", map[string]any{
			"run_id": res.RunID,
			"kind":   string(res.Kind),
			"error":  res.Err,
		})
		return res
	}

	logger.InfoCF("session", "Run starting", map[string]any{
		"run_id":  res.RunID,
		"root":    s.cfg.RootDirectory,
		"model":   s.cfg.Model,
		"dry_run": dryRun,
	})

	if s.orch == nil {
		return fail(E(KindIOFailure, "session has no orchestrator bound"))
	}
	if err := s.checkRoot(); err != nil {
		return fail(err)
	}
	ops, err := NewFileOps(s.cfg.RootDirectory, s.cfg.Exclusions, s.cfg.MaxReadBytes, dryRun)
	if err != nil {
		return fail(err)
	}
	if err := s.orch.Ready(ctx); err != nil {
		return fail(err)
	}

	s.mu.Lock()
	progress := s.progress
	s.mu.Unlock()

	observe := func(oc Outcome) {
		res.Transcript = append(res.Transcript, oc)
		logger.DebugCF("session", "Tool outcome", map[string]any{
			"run_id": res.RunID,
			"tool":   oc.Tool,
			"ok":     oc.OK,
			"kind":   string(oc.Kind),
		})
		if progress != nil {
			progress(oc)
		}
	}

	msg, toolCalls, err := s.orch.Run(ctx, RunBinding{
		Ops:           ops,
		MaxIterations: s.cfg.MaxIterations,
		Observe:       observe,
	})
	res.Iterations = toolCalls
	if err != nil {
		return fail(err)
	}

	res.Success = true
	res.Message = msg
	res.Duration = time.Since(start)
	logger.InfoCF("session", "Run completed", map[string]any{
		"run_id":     res.RunID,
		"tool_calls": toolCalls,
		"duration":   res.Duration.String(),
	})
	return res
}

func (s *Session) checkRoot() error {
	info, err := os.Stat(s.cfg.RootDirectory)
	if err != nil {
		return Wrap(err, KindIOFailure, "target directory '%s' is not usable: %v", s.cfg.RootDirectory, err)
	}
	if !info.IsDir() {
		return E(KindIOFailure, "target '%s' is not a directory", s.cfg.RootDirectory)
	}
	return nil
}
