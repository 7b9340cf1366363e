package gigachat

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// tokenLeeway refreshes the access token slightly before it expires.
const tokenLeeway = time.Minute

// apiClient talks to GigaChat's OpenAI-compatible chat completions endpoint.
type apiClient struct {
	settings   Settings
	transport  *http.Transport
	httpClient *http.Client
	client     openai.Client

	mu     sync.Mutex
	token  accessToken
	closed bool
	now    func() time.Time
}

// Open builds an HTTP transport from s, obtains an access token and returns a
// ready Client. The caller must Close it.
func Open(ctx context.Context, s Settings) (Client, error) {
	if s.Credentials == "" {
		return nil, errors.New("credentials are required")
	}
	transport, err := newTransport(s)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Transport: transport, Timeout: s.Timeout}

	c := &apiClient{
		settings:   s,
		transport:  transport,
		httpClient: httpClient,
		client: openai.NewClient(
			option.WithBaseURL(withTrailingSlash(s.BaseURL)),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		now: time.Now,
	}
	if _, err := c.accessToken(ctx); err != nil {
		transport.CloseIdleConnections()
		return nil, err
	}
	return c, nil
}

func newTransport(s Settings) (*http.Transport, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if !s.VerifySSLCerts {
		tlsConfig.InsecureSkipVerify = true
	}
	if s.CABundleFile != "" {
		pem, err := os.ReadFile(s.CABundleFile)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %s has no certificates", s.CABundleFile)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return transport, nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// accessToken returns a valid token, refreshing it when it is about to expire.
func (c *apiClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if c.token.AccessToken != "" && c.now().Add(tokenLeeway).Before(c.token.expiry()) {
		return c.token.AccessToken, nil
	}
	tok, err := fetchToken(ctx, c.httpClient, c.settings.AuthURL, c.settings.Credentials, c.settings.Scope)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok.AccessToken, nil
}

// Chat sends prompt as a single user message.
func (c *apiClient) Chat(ctx context.Context, prompt string) (*Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}, option.WithAPIKey(token))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	resp := &Response{Model: completion.Model, Choices: make([]Choice, 0, len(completion.Choices))}
	for _, choice := range completion.Choices {
		resp.Choices = append(resp.Choices, Choice{
			Index: int(choice.Index),
			Message: Message{
				Role:    string(choice.Message.Role),
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}
	return resp, nil
}

// Close releases idle connections. Subsequent calls are no-ops.
func (c *apiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.transport.CloseIdleConnections()
	return nil
}
