// Package runtime implements the ego tree-walking evaluator.
package runtime

import (
	"github.com/lemonberrylabs/ego/pkg/types"
)

// Scope maps names to values for one lexical level.
type Scope map[string]types.Value

// ScopeStack is an ordered stack of scopes with the innermost on top.
// Lookups walk from the top down and the first match wins.
type ScopeStack struct {
	scopes []Scope
}

// NewScopeStack creates a stack holding one empty global scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []Scope{make(Scope)}}
}

// Push opens a new innermost scope.
func (s *ScopeStack) Push() {
	s.scopes = append(s.scopes, make(Scope))
}

// Pop discards the innermost scope. The global scope is never popped.
func (s *ScopeStack) Pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Capture returns a stack sharing the current scopes. Bindings added or
// updated in those scopes stay visible through the capture; scopes pushed
// later on either stack are not shared.
func (s *ScopeStack) Capture() *ScopeStack {
	scopes := make([]Scope, len(s.scopes))
	copy(scopes, s.scopes)
	return &ScopeStack{scopes: scopes}
}

// Depth returns the number of scopes on the stack.
func (s *ScopeStack) Depth() int {
	return len(s.scopes)
}

// Get retrieves a variable value, searching from the innermost scope out.
func (s *ScopeStack) Get(name string) (types.Value, error) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, nil
		}
	}
	return types.Nothing, types.NewReferenceError(name)
}

// Declare binds name in the innermost scope. Declaring a name that already
// exists in that scope is a Redeclaration error; shadowing an outer scope is
// allowed.
func (s *ScopeStack) Declare(name string, value types.Value) error {
	top := s.scopes[len(s.scopes)-1]
	if _, exists := top[name]; exists {
		return types.NewRedeclarationError(name)
	}
	top[name] = value
	return nil
}

// Set updates the nearest scope holding name.
func (s *ScopeStack) Set(name string, value types.Value) error {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i][name]; ok {
			s.scopes[i][name] = value
			return nil
		}
	}
	return types.NewReferenceError(name)
}

// Exists checks if a variable exists in any scope.
func (s *ScopeStack) Exists(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Local returns a copy of the innermost scope.
func (s *ScopeStack) Local() Scope {
	top := s.scopes[len(s.scopes)-1]
	out := make(Scope, len(top))
	for k, v := range top {
		out[k] = v
	}
	return out
}
