// Package config reads the OAuth client credentials and tool settings from the
// environment, falling back to .env files for the credentials.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

const (
	ClientIDKey     = "CLIENT_ID"
	ClientSecretKey = "CLIENT_SECRET"
)

const DefaultAuthTimeout = 3 * time.Minute

var ErrMissingCredentials = errors.New("CLIENT_ID and CLIENT_SECRET must be set in the environment or a .env file")

type Config struct {
	ClientID      string        `env:"CLIENT_ID"`
	ClientSecret  string        `env:"CLIENT_SECRET"`
	RedirectURI   string        `env:"ACC_REDIRECT_URI,default=http://127.0.0.1:8765/callback/"`
	AuthTimeout   time.Duration `env:"ACC_AUTH_TIMEOUT,default=3m"`
	ExcludedTypes []string      `env:"ACC_EXCLUDED_TYPES,default=items:autodesk.bim360:C4RModel"`
	RedisAddr     string        `env:"REDIS_ADDR"`
}

// Load decodes the environment and then fills in missing client credentials from
// the .env files, in order. The first value found for a key wins.
func Load(files ...string) (*Config, error) {
	cfg := Config{}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("invalid environment (%w)", err)
	}

	for _, file := range files {
		env, err := DotEnv(file)
		if err != nil {
			return nil, err
		}

		if cfg.ClientID == "" {
			cfg.ClientID = env[ClientIDKey]
		}

		if cfg.ClientSecret == "" {
			cfg.ClientSecret = env[ClientSecretKey]
		}
	}

	return &cfg, nil
}

// Credentials returns the OAuth client ID and secret, or ErrMissingCredentials.
func (c Config) Credentials() (string, string, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return "", "", ErrMissingCredentials
	}

	return c.ClientID, c.ClientSecret, nil
}

// EnvFiles returns the .env files next to the executable and in its parent directory.
func EnvFiles() []string {
	exe, err := os.Executable()
	if err != nil {
		return []string{}
	}

	dir := filepath.Dir(exe)

	return []string{
		filepath.Join(dir, ".env"),
		filepath.Join(filepath.Dir(dir), ".env"),
	}
}

// DotEnv parses KEY=value lines. Blank lines, comments and lines without '=' are
// ignored and surrounding quotes are stripped from values. A missing file is
// not an error.
func DotEnv(path string) (map[string]string, error) {
	env := map[string]string{}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return env, nil
	} else if err != nil {
		return nil, err
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		env[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %v (%w)", path, err)
	}

	return env, nil
}
