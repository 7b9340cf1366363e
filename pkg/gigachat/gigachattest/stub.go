// Package gigachattest provides an in-memory gigachat.Client for tests.
package gigachattest

import (
	"context"
	"sync"

	"github.com/minhyannv/gigachat-go/pkg/gigachat"
)

// Stub records every interaction and answers with a canned reply.
type Stub struct {
	Reply    string
	Response *gigachat.Response // overrides Reply when set
	OpenErr  error
	ChatErr  error
	CloseErr error

	mu       sync.Mutex
	opens    int
	chats    int
	closes   int
	settings []gigachat.Settings
	prompts  []string
}

// Open satisfies gigachat.Opener.
func (s *Stub) Open(_ context.Context, settings gigachat.Settings) (gigachat.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opens++
	s.settings = append(s.settings, settings)
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return stubClient{s: s}, nil
}

// Opens returns how many times Open was called.
func (s *Stub) Opens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

// Chats returns how many requests were sent.
func (s *Stub) Chats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats
}

// Closes returns how many times a client was closed.
func (s *Stub) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Settings returns the settings passed to each Open call.
func (s *Stub) Settings() []gigachat.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gigachat.Settings(nil), s.settings...)
}

// Prompts returns every prompt sent through Chat.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

type stubClient struct {
	s *Stub
}

func (c stubClient) Chat(_ context.Context, prompt string) (*gigachat.Response, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	c.s.chats++
	c.s.prompts = append(c.s.prompts, prompt)
	if c.s.ChatErr != nil {
		return nil, c.s.ChatErr
	}
	if c.s.Response != nil {
		return c.s.Response, nil
	}
	return &gigachat.Response{
		Choices: []gigachat.Choice{{
			Message:      gigachat.Message{Role: "assistant", Content: c.s.Reply},
			FinishReason: "stop",
		}},
	}, nil
}

func (c stubClient) Close() error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	c.s.closes++
	return c.s.CloseErr
}
