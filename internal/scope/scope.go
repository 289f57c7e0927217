// Package scope owns the asynchronous work started by a view.
//
// Each task runs under a key. Starting a task under a key cancels the one
// already running there, and only the newest task's result is current.
// Closing the scope cancels everything it owns.
package scope

import (
	"context"
	"sync"
)

// Token identifies one started task.
type Token struct {
	Key string
	Seq uint64
}

type task struct {
	seq    uint64
	cancel context.CancelFunc
}

type Scope struct {
	mu     sync.Mutex
	parent context.Context
	seq    uint64
	tasks  map[string]task
	closed bool
}

// New creates a scope whose tasks derive from parent.
func New(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	return &Scope{parent: parent, tasks: map[string]task{}}
}

// Start cancels the task running under key and begins a new one.
// On a closed scope the returned context is already cancelled.
func (s *Scope) Start(key string) (context.Context, Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	tok := Token{Key: key, Seq: s.seq}
	ctx, cancel := context.WithCancel(s.parent)
	if s.closed {
		cancel()
		return ctx, tok
	}
	if prev, ok := s.tasks[key]; ok {
		prev.cancel()
	}
	s.tasks[key] = task{seq: tok.Seq, cancel: cancel}
	return ctx, tok
}

// Finish releases tok and reports whether its result should be applied.
// Stale tokens leave the newer task untouched.
func (s *Scope) Finish(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	t, ok := s.tasks[tok.Key]
	if !ok || t.seq != tok.Seq {
		return false
	}
	t.cancel()
	delete(s.tasks, tok.Key)
	return true
}

// Cancel stops the task under key, if any.
func (s *Scope) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[key]; ok {
		t.cancel()
		delete(s.tasks, key)
	}
}

// Pending reports whether a task is running under key.
func (s *Scope) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Close cancels every task. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, t := range s.tasks {
		t.cancel()
		delete(s.tasks, key)
	}
}
