// Package gigachat defines the chat client used by the driver and a
// production adapter for the GigaChat API.
package gigachat

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyChoices is returned when a completion carries no choices.
	ErrEmptyChoices = errors.New("empty completion choices")
	// ErrClosed is returned when a client is used after Close.
	ErrClosed = errors.New("gigachat client is closed")
)

// Settings are the construction parameters of a client.
type Settings struct {
	Credentials    string
	VerifySSLCerts bool

	Scope        string
	Model        string
	BaseURL      string
	AuthURL      string
	CABundleFile string
	Timeout      time.Duration
}

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// Choice is one completion alternative.
type Choice struct {
	Index        int
	Message      Message
	FinishReason string
}

// Response is a chat completion.
type Response struct {
	Model   string
	Choices []Choice
}

// FirstContent returns the text of the first choice.
func (r *Response) FirstContent() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return r.Choices[0].Message.Content, nil
}

// Client sends prompts to a chat service. It owns transport resources until
// Close is called.
type Client interface {
	Chat(ctx context.Context, prompt string) (*Response, error)
	Close() error
}

// Opener acquires a Client.
type Opener func(ctx context.Context, s Settings) (Client, error)

// With opens a client, passes it to fn and closes it on every path. A close
// failure is joined with the error returned by fn. An opener returning a nil
// client without an error is reported as an error.
func With(ctx context.Context, open Opener, s Settings, fn func(Client) error) (err error) {
	if open == nil {
		return errors.New("opener is required")
	}
	client, err := open(ctx, s)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("opener returned nil client")
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(client)
}
