package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minhyannv/gigachat-go/pkg/agent"
	"github.com/minhyannv/gigachat-go/pkg/gigachat/gigachattest"
)

func TestRunWithoutCredentials(t *testing.T) {
	stub := &gigachattest.Stub{Reply: "hello"}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), t.TempDir(), nil, &stdout, &stderr, stub.Open)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if stdout.String() != agent.MissingCredentialsMessage+"\n" {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
	if stub.Opens() != 0 {
		t.Fatalf("expected client to never be opened, got %d", stub.Opens())
	}
}

func TestRunPrintsReply(t *testing.T) {
	stub := &gigachattest.Stub{Reply: "hello"}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), t.TempDir(), []string{"GIGACHAT_CREDENTIALS=secret"}, &stdout, &stderr, stub.Open)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr.String())
	}
	if stdout.String() != "hello\n" {
		t.Fatalf("expected %q, got %q", "hello\n", stdout.String())
	}
	s := stub.Settings()[0]
	if s.Credentials != "secret" || !s.VerifySSLCerts {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected quiet stderr, got %q", stderr.String())
	}
}

func TestRunReadsDotenvFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GIGACHAT_CREDENTIALS=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	stub := &gigachattest.Stub{Reply: "ok"}
	var stdout, stderr bytes.Buffer

	if code := run(context.Background(), dir, nil, &stdout, &stderr, stub.Open); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if got := stub.Settings()[0].Credentials; got != "from-file" {
		t.Fatalf("expected credentials from .env, got %q", got)
	}
}

func TestRunCollaboratorFailure(t *testing.T) {
	stub := &gigachattest.Stub{ChatErr: errors.New("connection refused")}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), t.TempDir(), []string{"GIGACHAT_CREDENTIALS=secret"}, &stdout, &stderr, stub.Open)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error: gigachat chat: connection refused") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected empty stdout, got %q", stdout.String())
	}
	if stub.Closes() != 1 {
		t.Fatalf("expected one close, got %d", stub.Closes())
	}
}

func TestRunLogsConfigWarnings(t *testing.T) {
	stub := &gigachattest.Stub{Reply: "ok"}
	var stdout, stderr bytes.Buffer

	environ := []string{"GIGACHAT_CREDENTIALS=secret", "GIGACHAT_TIMEOUT=later"}
	if code := run(context.Background(), t.TempDir(), environ, &stdout, &stderr, stub.Open); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stderr.String(), "WARN") || !strings.Contains(stderr.String(), "GIGACHAT_TIMEOUT") {
		t.Fatalf("expected timeout warning on stderr, got %q", stderr.String())
	}
}

func TestRunLogsFailureAtErrorLevel(t *testing.T) {
	stub := &gigachattest.Stub{OpenErr: errors.New("auth: status 401")}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), t.TempDir(), []string{"GIGACHAT_CREDENTIALS=secret"}, &stdout, &stderr, stub.Open)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "ERROR request failed") || !strings.Contains(stderr.String(), `"op":"open"`) {
		t.Fatalf("expected error log with op, got %q", stderr.String())
	}
}
