// Package main sends one prompt to GigaChat and prints the reply.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/minhyannv/gigachat-go/pkg/agent"
	configpkg "github.com/minhyannv/gigachat-go/pkg/config"
	"github.com/minhyannv/gigachat-go/pkg/gigachat"
	loggerpkg "github.com/minhyannv/gigachat-go/pkg/logger"
)

// main is the program entry point.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	code := run(ctx, wd, os.Environ(), os.Stdout, os.Stderr, gigachat.Open)
	stop()
	os.Exit(code)
}

// run resolves configuration from dir and environ and performs one request.
// It returns the process exit code.
func run(ctx context.Context, dir string, environ []string, stdout, stderr io.Writer, open gigachat.Opener) int {
	cfg := configpkg.Load(dir, environ, nil)

	level := loggerpkg.LevelWarn
	if cfg.Verbose {
		level = loggerpkg.LevelDebug
	}
	appLogger := loggerpkg.NewWriterLogger(stderr, level)
	for _, warning := range cfg.Warnings {
		loggerpkg.Warn(appLogger, "config", map[string]any{"warning": warning})
	}

	if err := agent.Run(ctx, cfg, open, stdout, agent.WithLogger(appLogger)); err != nil {
		fields := map[string]any{"error": err.Error()}
		var collabErr *agent.CollaboratorError
		if errors.As(err, &collabErr) {
			fields["op"] = collabErr.Op
		}
		loggerpkg.Error(appLogger, "request failed", fields)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
