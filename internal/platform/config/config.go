package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	errInvalidPort        = errors.New("config: invalid PORT number")
	errProbeCapOutOfRange = errors.New("config: LINK_PROBE_CAP must be 1-100")
	errInvalidTimeout     = errors.New("config: timeouts must be greater than 0")
	errInvalidShellBytes  = errors.New("config: SHELL_MAX_BYTES must be greater than 0")
	errEmptyEndpoint      = errors.New("config: PRERENDER_ENDPOINT cannot be empty")
	errInvalidRateLimit   = errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be greater than 0")
)

// Browser-like request headers sent on every outbound fetch and probe.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// Viper keys. AutomaticEnv maps each to its upper-cased environment variable.
const (
	KeyPort                 = "port"
	KeyLogLevel             = "log_level"
	KeyLogFormat            = "log_format"
	KeyLinkProbeCap         = "link_probe_cap"
	KeyFetchTimeout         = "fetch_timeout"
	KeyProbeTimeout         = "probe_timeout"
	KeyRequestTimeout       = "request_timeout"
	KeyPrerenderEndpoint    = "prerender_endpoint"
	KeyShellMaxBytes        = "shell_max_bytes"
	KeyBlockPhrases         = "block_phrases"
	KeyUserAgent            = "user_agent"
	KeyAccept               = "accept"
	KeyAcceptLanguage       = "accept_language"
	KeyMaxBodyBytes         = "max_body_bytes"
	KeyRateLimitRPS         = "rate_limit_rps"
	KeyRateLimitBurst       = "rate_limit_burst"
	KeyAllowPrivateNetworks = "allow_private_networks"
)

// Config holds all application configuration.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	LinkProbeCap   int
	FetchTimeout   time.Duration
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration

	PrerenderEndpoint string
	ShellMaxBytes     int
	BlockPhrases      []string

	UserAgent      string
	Accept         string
	AcceptLanguage string
	MaxBodyBytes   int64

	RateLimitRPS   float64
	RateLimitBurst int

	AllowPrivateNetworks bool
}

// Load reads configuration from a .env file (when present) and environment
// variables, with sensible defaults.
func Load() (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return FromViper(New())
}

// LoadDotEnv copies variables from the named file into the process
// environment when the file exists. Variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// New returns a viper instance with defaults registered and environment
// lookup enabled. Callers may bind CLI flags onto it before FromViper.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogLevel, "ERROR")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyLinkProbeCap, 10)
	v.SetDefault(KeyFetchTimeout, 15*time.Second)
	v.SetDefault(KeyProbeTimeout, 5*time.Second)
	v.SetDefault(KeyRequestTimeout, 60*time.Second)
	v.SetDefault(KeyPrerenderEndpoint, "https://r.jina.ai/http://")
	v.SetDefault(KeyShellMaxBytes, 5000)
	v.SetDefault(KeyBlockPhrases, "just a moment")
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyAccept, DefaultAccept)
	v.SetDefault(KeyAcceptLanguage, DefaultAcceptLanguage)
	v.SetDefault(KeyMaxBodyBytes, 10<<20)
	v.SetDefault(KeyRateLimitRPS, 5.0)
	v.SetDefault(KeyRateLimitBurst, 10)
	v.SetDefault(KeyAllowPrivateNetworks, false)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:                 v.GetString(KeyPort),
		LogLevel:             v.GetString(KeyLogLevel),
		LogFormat:            v.GetString(KeyLogFormat),
		LinkProbeCap:         v.GetInt(KeyLinkProbeCap),
		FetchTimeout:         v.GetDuration(KeyFetchTimeout),
		ProbeTimeout:         v.GetDuration(KeyProbeTimeout),
		RequestTimeout:       v.GetDuration(KeyRequestTimeout),
		PrerenderEndpoint:    strings.TrimSpace(v.GetString(KeyPrerenderEndpoint)),
		ShellMaxBytes:        v.GetInt(KeyShellMaxBytes),
		BlockPhrases:         splitList(v.GetString(KeyBlockPhrases)),
		UserAgent:            v.GetString(KeyUserAgent),
		Accept:               v.GetString(KeyAccept),
		AcceptLanguage:       v.GetString(KeyAcceptLanguage),
		MaxBodyBytes:         v.GetInt64(KeyMaxBodyBytes),
		RateLimitRPS:         v.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst:       v.GetInt(KeyRateLimitBurst),
		AllowPrivateNetworks: v.GetBool(KeyAllowPrivateNetworks),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.LinkProbeCap < 1 || c.LinkProbeCap > 100 {
		return fmt.Errorf("%w: got %d", errProbeCapOutOfRange, c.LinkProbeCap)
	}

	if c.FetchTimeout <= 0 || c.ProbeTimeout <= 0 || c.RequestTimeout <= 0 {
		return errInvalidTimeout
	}

	if c.ShellMaxBytes <= 0 {
		return fmt.Errorf("%w: got %d", errInvalidShellBytes, c.ShellMaxBytes)
	}

	if c.PrerenderEndpoint == "" {
		return errEmptyEndpoint
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errInvalidRateLimit
	}

	return nil
}

// splitList parses a comma separated value, dropping blank entries.
// Entries may contain spaces ("just a moment").
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
