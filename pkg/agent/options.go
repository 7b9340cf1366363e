package agent

import loggerpkg "github.com/minhyannv/gigachat-go/pkg/logger"

// Option configures optional runtime dependencies for Run.
type Option func(*runDeps)

type runDeps struct {
	logger loggerpkg.Logger
	prompt string
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *runDeps) {
		d.logger = l
	}
}

// WithPrompt replaces the built-in prompt.
func WithPrompt(prompt string) Option {
	return func(d *runDeps) {
		d.prompt = prompt
	}
}
