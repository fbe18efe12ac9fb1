package greeting

import (
	"context"
	"sync/atomic"
)

// MockGreeter is a Greeter for tests that counts calls
type MockGreeter struct {
	GreetFunc      func(name string) string
	GreetAsyncFunc func(ctx context.Context, name string) (string, error)

	greetCalls      atomic.Int64
	greetAsyncCalls atomic.Int64
	lastName        atomic.Value
}

// NewMockGreeter creates a mock that echoes the name it receives
func NewMockGreeter() *MockGreeter {
	return &MockGreeter{
		GreetFunc: func(name string) string {
			return "mock greet " + name
		},
		GreetAsyncFunc: func(_ context.Context, name string) (string, error) {
			return "mock greet async " + name, nil
		},
	}
}

// Greet implements Greeter.Greet
func (m *MockGreeter) Greet(name string) string {
	m.greetCalls.Add(1)
	m.lastName.Store(name)
	return m.GreetFunc(name)
}

// GreetAsync implements Greeter.GreetAsync
func (m *MockGreeter) GreetAsync(ctx context.Context, name string) (string, error) {
	m.greetAsyncCalls.Add(1)
	m.lastName.Store(name)
	return m.GreetAsyncFunc(ctx, name)
}

// GreetCalls returns how many times Greet was called
func (m *MockGreeter) GreetCalls() int64 {
	return m.greetCalls.Load()
}

// GreetAsyncCalls returns how many times GreetAsync was called
func (m *MockGreeter) GreetAsyncCalls() int64 {
	return m.greetAsyncCalls.Load()
}

// LastName returns the name passed to the most recent call
func (m *MockGreeter) LastName() string {
	name, _ := m.lastName.Load().(string)
	return name
}
