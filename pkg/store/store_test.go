package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/ego/pkg/types"
)

func TestCreateAndGetRun(t *testing.T) {
	s := New()
	run := s.CreateRun("print(1);")

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID, err)
	}
	if run.State != RunActive {
		t.Errorf("state = %s, want ACTIVE", run.State)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Source != "print(1);" {
		t.Errorf("source = %q", got.Source)
	}

	if _, err := s.GetRun("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCompleteRun(t *testing.T) {
	s := New()
	run := s.CreateRun("print(1);")
	if err := s.CompleteRun(run.ID, []string{"1"}, 1); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	got, _ := s.GetRun(run.ID)
	if got.State != RunSucceeded || len(got.Output) != 1 || got.Output[0] != "1" || got.Steps != 1 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.EndTime.IsZero() || got.Duration() < 0 {
		t.Error("end time not set")
	}

	if err := s.CompleteRun(run.ID, nil, 0); err == nil || !strings.Contains(err.Error(), "not active") {
		t.Errorf("expected not active error, got %v", err)
	}
}

func TestFailRun(t *testing.T) {
	s := New()

	diag := s.CreateRun("print(x);")
	if err := s.FailRun(diag.ID, []string{"a"}, 2, types.NewReferenceError("x").AtLine(3)); err != nil {
		t.Fatalf("FailRun: %v", err)
	}
	got, _ := s.GetRun(diag.ID)
	if got.State != RunFailed || got.Error == nil {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Error.Kind != "Reference" || got.Error.Line != 3 || got.Error.Message != "'x' is not defined" {
		t.Errorf("unexpected error: %+v", got.Error)
	}
	if len(got.Output) != 1 || got.Output[0] != "a" {
		t.Errorf("partial output lost: %v", got.Output)
	}

	plain := s.CreateRun("")
	wrapped := fmt.Errorf("reading: %w", errors.New("boom"))
	if err := s.FailRun(plain.ID, nil, 0, wrapped); err != nil {
		t.Fatalf("FailRun: %v", err)
	}
	got, _ = s.GetRun(plain.ID)
	if got.Error.Kind != "" || got.Error.Message != "reading: boom" {
		t.Errorf("unexpected error: %+v", got.Error)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := New()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.CreateRun(fmt.Sprintf("print(%d);", i)).ID)
	}
	runs := s.ListRuns()
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[4-i] {
			t.Errorf("runs[%d] = %s, want %s", i, run.ID, ids[4-i])
		}
	}
}

func TestReturnedRunsAreCopies(t *testing.T) {
	s := New()
	run := s.CreateRun("print(1);")
	_ = s.CompleteRun(run.ID, []string{"1"}, 1)

	got, _ := s.GetRun(run.ID)
	got.Output[0] = "changed"
	got.State = RunFailed

	again, _ := s.GetRun(run.ID)
	if again.Output[0] != "1" || again.State != RunSucceeded {
		t.Errorf("store mutated through returned run: %+v", again)
	}
}
