package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment keys understood by the resolver.
const (
	KeyCredentials    = "GIGACHAT_CREDENTIALS"
	KeyVerifySSLCerts = "GIGACHAT_VERIFY_SSL_CERTS"
	KeyScope          = "GIGACHAT_SCOPE"
	KeyModel          = "GIGACHAT_MODEL"
	KeyBaseURL        = "GIGACHAT_BASE_URL"
	KeyAuthURL        = "GIGACHAT_AUTH_URL"
	KeyCABundleFile   = "GIGACHAT_CA_BUNDLE_FILE"
	KeyTimeout        = "GIGACHAT_TIMEOUT"
	KeyVerbose        = "GIGACHAT_VERBOSE"
)

const (
	DefaultScope   = "GIGACHAT_API_PERS"
	DefaultModel   = "GigaChat"
	DefaultBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultTimeout = 30 * time.Second

	// defaultVerifySSLCerts is the source string used when the variable is absent.
	defaultVerifySSLCerts = "True"
)

var trueValues = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"y":    {},
	"on":   {},
}

// Config is the resolved, immutable runtime configuration.
type Config struct {
	// Credentials is the authorization key, kept verbatim. Empty means absent.
	Credentials    string
	VerifySSLCerts bool

	Scope        string
	Model        string
	BaseURL      string
	AuthURL      string
	CABundleFile string
	Timeout      time.Duration
	Verbose      bool

	// Warnings lists non-fatal problems found while resolving.
	Warnings []string
}

// HasCredentials reports whether a credential was provided by any source.
func (c Config) HasCredentials() bool {
	return c.Credentials != ""
}

// ParseBool reports whether s is one of the accepted true spellings.
// Everything else, including the empty string, is false.
func ParseBool(s string) bool {
	_, ok := trueValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Resolve builds a Config from merged key/value pairs. It never fails.
func Resolve(values map[string]string) Config {
	lookup := func(key, def string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return def
	}
	trimmed := func(key, def string) string {
		v := strings.TrimSpace(lookup(key, def))
		if v == "" {
			return def
		}
		return v
	}

	cfg := Config{
		Credentials:    lookup(KeyCredentials, ""),
		VerifySSLCerts: ParseBool(lookup(KeyVerifySSLCerts, defaultVerifySSLCerts)),
		Scope:          trimmed(KeyScope, DefaultScope),
		Model:          trimmed(KeyModel, DefaultModel),
		BaseURL:        trimmed(KeyBaseURL, DefaultBaseURL),
		AuthURL:        trimmed(KeyAuthURL, DefaultAuthURL),
		CABundleFile:   strings.TrimSpace(lookup(KeyCABundleFile, "")),
		Timeout:        DefaultTimeout,
		Verbose:        ParseBool(lookup(KeyVerbose, "")),
	}

	if raw, ok := values[KeyTimeout]; ok && strings.TrimSpace(raw) != "" {
		timeout, err := parseSeconds(raw)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: %v; using %s", KeyTimeout, err, DefaultTimeout))
		} else {
			cfg.Timeout = timeout
		}
	}
	return cfg
}

func parseSeconds(raw string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds %q", raw)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
