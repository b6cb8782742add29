package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type stubOrchestrator struct {
	readyErr error
	runFn    func(ctx context.Context, b RunBinding) (string, int, error)
}

func (s *stubOrchestrator) Ready(ctx context.Context) error { return s.readyErr }

func (s *stubOrchestrator) Run(ctx context.Context, b RunBinding) (string, int, error) {
	if s.runFn != nil {
		return s.runFn(ctx, b)
	}
	return "done", 0, nil
}

func newTestSession(t *testing.T, orch Orchestrator) *Session {
	t.Helper()
	s, err := NewSession(SessionConfig{RootDirectory: t.TempDir()}, orch)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	if _, err := NewSession(SessionConfig{}, nil); err == nil {
		t.Error("Expected error for missing root, got nil")
	}

	s := newTestSession(t, nil)
	cfg := s.Config()
	if cfg.MaxReadBytes != DefaultMaxReadBytes {
		t.Errorf("Expected default max read bytes %d, got %d", DefaultMaxReadBytes, cfg.MaxReadBytes)
	}
	if cfg.MaxIterations != DefaultMaxIterations {
		t.Errorf("Expected default max iterations %d, got %d", DefaultMaxIterations, cfg.MaxIterations)
	}
	if s.State() != StateIdle {
		t.Errorf("Expected idle, got %s", s.State())
	}
	if s.ID() == "" {
		t.Error("Expected non-empty session id")
	}
}

func TestSession_OrganizeSuccess(t *testing.T) {
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			msg, err := b.Ops.CreateFolder("docs")
			b.Observe(OutcomeOf("create_folder", msg, err))
			msg, err = b.Ops.CreateFolder("images")
			b.Observe(OutcomeOf("create_folder", msg, err))
			return "All organized", 2, nil
		},
	}
	s := newTestSession(t, orch)

	res := s.Organize(context.Background(), false)
	if !res.Success {
		t.Fatalf("Expected success, got %s: %s", res.Kind, res.Err)
	}
	if res.Message != "All organized" {
		t.Errorf("Expected final message, got %q", res.Message)
	}
	if res.Iterations != 2 {
		t.Errorf("Expected 2 iterations, got %d", res.Iterations)
	}
	if len(res.Transcript) != 2 {
		t.Fatalf("Expected 2 transcript entries, got %d", len(res.Transcript))
	}
	if !res.Transcript[0].OK || res.Transcript[0].Tool != "create_folder" {
		t.Errorf("Unexpected first outcome: %+v", res.Transcript[0])
	}
	if s.State() != StateCompleted {
		t.Errorf("Expected completed, got %s", s.State())
	}
}

func TestSession_AlreadyRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			close(started)
			<-release
			return "done", 1, nil
		},
	}
	s := newTestSession(t, orch)

	done := make(chan RunResult, 1)
	go func() { done <- s.Organize(context.Background(), true) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("Run never started")
	}

	// A second start is rejected, not queued
	second := s.Organize(context.Background(), true)
	if second.Kind != KindAlreadyRunning {
		t.Errorf("Expected already_running, got %q: %s", second.Kind, second.Err)
	}
	if second.Err == "" {
		t.Error("Expected non-empty error string on rejection")
	}

	// Preview is rejected too while a run holds the session
	if _, err := s.Preview(); KindOf(err) != KindAlreadyRunning {
		t.Errorf("Expected already_running from Preview, got %v", err)
	}

	close(release)
	res := <-done
	if !res.Success {
		t.Fatalf("Expected first run to succeed, got %s", res.Err)
	}
	if s.State() != StateCompleted {
		t.Errorf("Expected completed, got %s", s.State())
	}
}

func TestSession_RerunAfterTerminalState(t *testing.T) {
	calls := 0
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			calls++
			if calls == 1 {
				return "", 0, E(KindIterationLimit, "tool-call ceiling reached (5)")
			}
			return "done", 1, nil
		},
	}
	s := newTestSession(t, orch)

	first := s.Organize(context.Background(), true)
	if first.Success || first.Kind != KindIterationLimit {
		t.Fatalf("Expected iteration limit failure, got %+v", first)
	}
	if s.State() != StateFailed {
		t.Errorf("Expected failed, got %s", s.State())
	}

	second := s.Organize(context.Background(), true)
	if !second.Success {
		t.Fatalf("Expected rerun to succeed, got %s", second.Err)
	}
	if s.State() != StateCompleted {
		t.Errorf("Expected completed, got %s", s.State())
	}
}

func TestSession_ReadyFailure(t *testing.T) {
	orch := &stubOrchestrator{
		readyErr: E(KindMissingCredential, "ANTHROPIC_API_KEY is not set"),
	}
	s := newTestSession(t, orch)

	res := s.Organize(context.Background(), true)
	if res.Success {
		t.Fatal("Expected failure")
	}
	if res.Kind != KindMissingCredential {
		t.Errorf("Expected missing_credential, got %q", res.Kind)
	}
	if s.State() != StateFailed {
		t.Errorf("Expected failed, got %s", s.State())
	}
}

func TestSession_Cancellation(t *testing.T) {
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			return "", 3, context.Canceled
		},
	}
	s := newTestSession(t, orch)

	res := s.Organize(context.Background(), true)
	if res.Success {
		t.Fatal("Expected failure")
	}
	if res.Kind != KindCancelled {
		t.Errorf("Expected cancelled, got %q", res.Kind)
	}
	if res.Iterations != 3 {
		t.Errorf("Expected iteration count preserved, got %d", res.Iterations)
	}
}

func TestSession_InvalidRoot(t *testing.T) {
	s, err := NewSession(SessionConfig{
		RootDirectory: filepath.Join(t.TempDir(), "missing"),
	}, &stubOrchestrator{})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	res := s.Organize(context.Background(), true)
	if res.Success || res.Kind != KindIOFailure {
		t.Errorf("Expected io_failure for missing root, got %+v", res)
	}

	// A file is not a usable root either
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s2, err := NewSession(SessionConfig{RootDirectory: file}, &stubOrchestrator{})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	res = s2.Organize(context.Background(), true)
	if res.Success || res.Kind != KindIOFailure {
		t.Errorf("Expected io_failure for file root, got %+v", res)
	}
}

func TestSession_NilOrchestrator(t *testing.T) {
	s := newTestSession(t, nil)

	// Preview needs no model
	if _, err := s.Preview(); err != nil {
		t.Errorf("Preview failed: %v", err)
	}

	res := s.Organize(context.Background(), true)
	if res.Success || res.Err == "" {
		t.Errorf("Expected failure with message, got %+v", res)
	}
}

func TestSession_Preview(t *testing.T) {
	s := newTestSession(t, nil)
	root := s.Config().RootDirectory
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "venv"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Preview()
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Errorf("Expected only a.txt, got %+v", entries)
	}
	if s.State() != StateIdle {
		t.Errorf("Expected idle after preview, got %s", s.State())
	}
}

func TestSession_ProgressForwarding(t *testing.T) {
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			b.Observe(Outcome{Tool: "list_files", OK: true, Message: "two entries"})
			b.Observe(OutcomeOf("move_file", "", E(KindNotFound, "source file 'x' does not exist")))
			return "done", 2, nil
		},
	}
	s := newTestSession(t, orch)

	var seen []Outcome
	s.SetProgress(func(oc Outcome) { seen = append(seen, oc) })

	res := s.Organize(context.Background(), true)
	if !res.Success {
		t.Fatalf("Expected success, got %s", res.Err)
	}
	if len(seen) != 2 {
		t.Fatalf("Expected 2 progress events, got %d", len(seen))
	}
	if seen[0].Tool != "list_files" || !seen[0].OK {
		t.Errorf("Unexpected first event: %+v", seen[0])
	}
	if seen[1].Kind != KindNotFound || seen[1].OK {
		t.Errorf("Unexpected second event: %+v", seen[1])
	}
}

func TestSession_DryRunOverride(t *testing.T) {
	var sawDry bool
	orch := &stubOrchestrator{
		runFn: func(ctx context.Context, b RunBinding) (string, int, error) {
			sawDry = b.Ops.DryRun()
			return "done", 0, nil
		},
	}
	s, err := NewSession(SessionConfig{RootDirectory: t.TempDir(), DryRun: false}, orch)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	res := s.Organize(context.Background(), true)
	if !res.Success {
		t.Fatalf("Expected success, got %s", res.Err)
	}
	if !sawDry {
		t.Error("Expected operations bound in dry-run mode")
	}
	if !res.DryRun {
		t.Error("Expected result to record dry-run")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("Expected empty kind for nil, got %q", got)
	}
	if got := KindOf(E(KindNotFound, "x")); got != KindNotFound {
		t.Errorf("Expected not_found, got %q", got)
	}
	if got := KindOf(context.Canceled); got != KindCancelled {
		t.Errorf("Expected cancelled, got %q", got)
	}
	if got := KindOf(errors.New("boom")); got != KindIOFailure {
		t.Errorf("Expected io_failure fallback, got %q", got)
	}

	wrapped := Wrap(os.ErrNotExist, KindNotFound, "file 'a' does not exist")
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("Expected wrapped cause to survive errors.Is")
	}
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("Expected not_found, got %q", got)
	}
}
