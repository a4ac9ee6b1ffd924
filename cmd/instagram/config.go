package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	instagram "github.com/jamesprial/go-instagram-api-wrapper"
)

const defaultConfigPath = "~/.config/instagram/config.toml"

// settings are the CLI settings after merging the config file, the environment
// and the global flags, in increasing precedence.
type settings struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Callback     string `toml:"callback"`
	AccessToken  string `toml:"access_token"`
	Signed       bool   `toml:"signed"`
	UserAgent    string `toml:"user_agent"`
	BaseURL      string `toml:"base_url"`
	TokenURL     string `toml:"token_url"`
	OembedURL    string `toml:"oembed_url"`
}

// envOverrides maps environment variables onto settings fields.
var envOverrides = map[string]func(*settings, string) error{
	"INSTAGRAM_CLIENT_ID":     func(s *settings, v string) error { s.ClientID = v; return nil },
	"INSTAGRAM_CLIENT_SECRET": func(s *settings, v string) error { s.ClientSecret = v; return nil },
	"INSTAGRAM_CALLBACK":      func(s *settings, v string) error { s.Callback = v; return nil },
	"INSTAGRAM_ACCESS_TOKEN":  func(s *settings, v string) error { s.AccessToken = v; return nil },
	"INSTAGRAM_BASE_URL":      func(s *settings, v string) error { s.BaseURL = v; return nil },
	"INSTAGRAM_SIGNED": func(s *settings, v string) error {
		signed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INSTAGRAM_SIGNED: %w", err)
		}
		s.Signed = signed
		return nil
	},
}

// loadSettings reads the TOML config at path, falling back to an empty config
// when the file does not exist, then applies environment overrides.
func loadSettings(path string, lookup func(string) (string, bool)) (settings, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return settings{}, err
	}

	var cfg settings

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return settings{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return settings{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	for name, apply := range envOverrides {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			if err := apply(&cfg, strings.TrimSpace(value)); err != nil {
				return settings{}, err
			}
		}
	}

	return cfg, nil
}

// envLookup returns a lookup over the process environment. When path names a
// dotenv file, its values fill in variables the environment leaves unset or blank.
func envLookup(path string) (func(string) (string, bool), error) {
	if strings.TrimSpace(path) == "" {
		return os.LookupEnv, nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	values, err := godotenv.Read(resolved)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}

	return func(name string) (string, bool) {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
		value, ok := values[name]
		return value, ok
	}, nil
}

// clientConfig converts the settings to a library config.
func (s settings) clientConfig() *instagram.Config {
	return &instagram.Config{
		BaseURL:   s.BaseURL,
		TokenURL:  s.TokenURL,
		OembedURL: s.OembedURL,
		UserAgent: s.UserAgent,
	}
}

// canAuthenticate reports whether the settings carry what the OAuth flow needs.
func (s settings) canAuthenticate() bool {
	return s.ClientSecret != "" && s.Callback != ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
