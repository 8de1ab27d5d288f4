// Package store provides in-memory storage for program runs.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// RunState represents the state of a program run.
type RunState string

const (
	RunActive    RunState = "ACTIVE"
	RunSucceeded RunState = "SUCCEEDED"
	RunFailed    RunState = "FAILED"
)

// Run represents a stored program run.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	State     RunState  `json:"state"`
	Output    []string  `json:"output"`
	Error     *RunError `json:"error,omitempty"`
	Steps     int       `json:"steps"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitempty"`
}

// RunError describes why a run failed.
type RunError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    uint   `json:"line,omitempty"`
}

// Store is a thread-safe in-memory storage for runs.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*Run

	// insertion sequence, used for stable newest-first listing
	seq   int64
	order map[string]int64

	newID func() string
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		runs:  make(map[string]*Run),
		order: make(map[string]int64),
		newID: uuid.NewString,
	}
}

// CreateRun records a new active run for source.
func (s *Store) CreateRun(source string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	run := &Run{
		ID:        s.newID(),
		Source:    source,
		State:     RunActive,
		Output:    []string{},
		StartTime: time.Now(),
	}
	s.runs[run.ID] = run
	s.order[run.ID] = s.seq
	return run.clone()
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run '%s' not found", id)
	}
	return run.clone(), nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		result = append(result, run.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return s.order[result[i].ID] > s.order[result[j].ID]
	})
	return result
}

// CompleteRun marks a run as succeeded with its printed output.
func (s *Store) CompleteRun(id string, output []string, steps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.active(id)
	if err != nil {
		return err
	}
	run.State = RunSucceeded
	run.Output = append([]string{}, output...)
	run.Steps = steps
	run.EndTime = time.Now()
	return nil
}

// FailRun marks a run as failed. Output printed before the failure is kept.
func (s *Store) FailRun(id string, output []string, steps int, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, lookupErr := s.active(id)
	if lookupErr != nil {
		return lookupErr
	}
	run.State = RunFailed
	run.Output = append([]string{}, output...)
	run.Steps = steps
	run.EndTime = time.Now()

	runErr := &RunError{Message: err.Error()}
	if d, ok := types.AsDiagnostic(err); ok {
		runErr = &RunError{Kind: d.Kind.String(), Message: d.Message, Line: d.Line}
	}
	run.Error = runErr
	return nil
}

func (s *Store) active(id string) (*Run, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run '%s' not found", id)
	}
	if run.State != RunActive {
		return nil, fmt.Errorf("run '%s' is not active (state: %s)", id, run.State)
	}
	return run, nil
}

func (r *Run) clone() *Run {
	c := *r
	c.Output = append([]string{}, r.Output...)
	if r.Error != nil {
		e := *r.Error
		c.Error = &e
	}
	return &c
}

// Duration reports how long a finished run took.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
