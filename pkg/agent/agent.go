// Package agent runs one prompt against the chat service and prints the reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	configpkg "github.com/minhyannv/gigachat-go/pkg/config"
	"github.com/minhyannv/gigachat-go/pkg/gigachat"
	loggerpkg "github.com/minhyannv/gigachat-go/pkg/logger"
)

const (
	// Prompt is the question sent on every run.
	Prompt = "Как мне сравнить документацию с точки зрения аналитика, сопровождения, безопасности, архитектуры?"

	// MissingCredentialsMessage is printed instead of calling the service
	// when no credential is configured.
	MissingCredentialsMessage = "Не найден GIGACHAT_CREDENTIALS. Укажите его в .env или переменных окружения."
)

// SettingsFromConfig maps resolved configuration to client settings.
func SettingsFromConfig(cfg configpkg.Config) gigachat.Settings {
	return gigachat.Settings{
		Credentials:    cfg.Credentials,
		VerifySSLCerts: cfg.VerifySSLCerts,
		Scope:          cfg.Scope,
		Model:          cfg.Model,
		BaseURL:        cfg.BaseURL,
		AuthURL:        cfg.AuthURL,
		CABundleFile:   cfg.CABundleFile,
		Timeout:        cfg.Timeout,
	}
}

// Run sends one prompt and writes the first reply line to out.
//
// Without credentials it writes MissingCredentialsMessage and returns nil
// without calling open. Failures of the client are returned as
// *CollaboratorError; the client is closed on every path once opened.
func Run(ctx context.Context, cfg configpkg.Config, open gigachat.Opener, out io.Writer, opts ...Option) error {
	deps := runDeps{logger: loggerpkg.NopLogger{}, prompt: Prompt}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	if !cfg.HasCredentials() {
		loggerpkg.Debug(deps.logger, "credentials missing, skipping request", nil)
		_, err := fmt.Fprintln(out, MissingCredentialsMessage)
		return err
	}

	settings := SettingsFromConfig(cfg)
	loggerpkg.Debug(deps.logger, "opening client", map[string]any{
		"credentials":      loggerpkg.Mask(settings.Credentials),
		"verify_ssl_certs": settings.VerifySSLCerts,
		"scope":            settings.Scope,
		"model":            settings.Model,
		"base_url":         settings.BaseURL,
		"auth_url":         settings.AuthURL,
		"timeout":          settings.Timeout.String(),
	})

	var (
		opened bool
		reply  string
	)
	err := gigachat.With(ctx, open, settings, func(client gigachat.Client) error {
		opened = true
		loggerpkg.Debug(deps.logger, "sending prompt", map[string]any{"bytes": len(deps.prompt)})
		resp, err := client.Chat(ctx, deps.prompt)
		if err != nil {
			return &CollaboratorError{Op: "chat", Err: err}
		}
		content, err := resp.FirstContent()
		if err != nil {
			return &CollaboratorError{Op: "response", Err: err}
		}
		loggerpkg.Debug(deps.logger, "reply received", map[string]any{
			"choices": len(resp.Choices),
			"bytes":   len(content),
		})
		reply = content
		return nil
	})
	if err != nil {
		return classify(err, opened)
	}

	if _, err := fmt.Fprintln(out, reply); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

func classify(err error, opened bool) error {
	if !opened {
		return &CollaboratorError{Op: "open", Err: err}
	}
	var collabErr *CollaboratorError
	if errors.As(err, &collabErr) {
		return err
	}
	return &CollaboratorError{Op: "close", Err: err}
}
