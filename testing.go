package aientity

import (
	"context"
	"log/slog"
	"sync"
)

// StubInvoker returns a canned reply without any network access and records
// every request it receives.
type StubInvoker struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []*Request
}

func (s *StubInvoker) Invoke(ctx context.Context, req *Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

// Calls returns how many times Invoke was called.
func (s *StubInvoker) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the recorded requests.
func (s *StubInvoker) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Request(nil), s.requests...)
}

// NewForTesting creates a Factory for T that answers every call with reply.
// It uses the default config and never reads the environment.
func NewForTesting[T any](reply string) (*Factory[T], *StubInvoker, error) {
	stub := &StubInvoker{Reply: reply}
	f, err := New[T](
		WithConfig(DefaultConfig()),
		WithInvoker(stub),
		WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, nil, err
	}
	return f, stub, nil
}
