// Package greeting is the service layer of the template. It holds the
// greeting logic and has no dependency on the HTTP transport.
package greeting

import (
	"context"
	"time"
)

const (
	// TemplateName is embedded in every greeting.
	TemplateName = "Kotlin Multimodule Template"

	// DefaultName is used by callers when no name was supplied.
	DefaultName = "World"

	// AsyncDelay is the simulated latency of GreetAsync.
	AsyncDelay = 100 * time.Millisecond
)

// Greeter produces greeting messages
type Greeter interface {
	Greet(name string) string
	GreetAsync(ctx context.Context, name string) (string, error)
}

// Service is the default Greeter implementation
type Service struct{}

// NewService creates a new greeting service
func NewService() *Service {
	return &Service{}
}

// Greet returns the welcome message for name. The name is used verbatim,
// including the empty string.
func (s *Service) Greet(name string) string {
	return "Hello, " + name + "! This is your " + TemplateName + "."
}

// GreetAsync waits AsyncDelay before returning the async welcome message.
// The wait parks the calling goroutine on a timer; it returns ctx.Err() if
// the context is done first.
func (s *Service) GreetAsync(ctx context.Context, name string) (string, error) {
	timer := time.NewTimer(AsyncDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	return "Hello async, " + name + "! This is your " + TemplateName + ".", nil
}
