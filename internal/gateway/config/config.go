package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string
	LLM  LLMConfig
	// StageTimeout bounds each gateway call. Zero disables it.
	StageTimeout time.Duration
	Session      SessionConfig
	CORSOrigins  []string
}

type LLMConfig struct {
	APIKey          string
	EvaluationModel string
	ImageModel      string
	AspectRatio     string
	// Fake swaps the provider for the deterministic offline client.
	Fake bool
}

type SessionConfig struct {
	Max int
	TTL time.Duration
}

func Default() Config {
	return Config{
		Port: ":8081",
		Env:  "local",
		LLM: LLMConfig{
			EvaluationModel: "gemini-2.5-flash",
			ImageModel:      "gemini-2.5-flash-image",
			AspectRatio:     "16:9",
		},
		Session: SessionConfig{
			Max: 256,
			TTL: 30 * time.Minute,
		},
		CORSOrigins: []string{"*"},
	}
}

// Load reads .env, the -port flag, the optional CONFIG_FILE overlay and
// the process environment, in that order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", "", "server port")
	flag.Parse()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	if *port != "" && strings.TrimSpace(os.Getenv("PORT")) == "" {
		cfg.Port = normalizePort(*port)
	}
	return cfg, nil
}

// FromEnv builds a config from defaults, the YAML file named by CONFIG_FILE
// (if any) and the variables getenv returns.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if path := env("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if v := env("PORT"); v != "" {
		cfg.Port = normalizePort(v)
	}
	if v := env("APP_ENV"); v != "" {
		cfg.Env = v
	}
	cfg.LLM.APIKey = firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY"))
	if v := env("EVALUATION_MODEL"); v != "" {
		cfg.LLM.EvaluationModel = v
	}
	if v := env("IMAGE_MODEL"); v != "" {
		cfg.LLM.ImageModel = v
	}
	if v := env("IMAGE_ASPECT_RATIO"); v != "" {
		cfg.LLM.AspectRatio = v
	}
	if v := env("LLM_FAKE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: LLM_FAKE: %w", err)
		}
		cfg.LLM.Fake = b
	}
	if v := env("STAGE_TIMEOUT"); v != "" {
		d, err := parseDuration("STAGE_TIMEOUT", v)
		if err != nil {
			return nil, err
		}
		cfg.StageTimeout = d
	}
	if v := env("SESSION_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: SESSION_MAX must be a positive integer, got %q", v)
		}
		cfg.Session.Max = n
	}
	if v := env("SESSION_TTL"); v != "" {
		d, err := parseDuration("SESSION_TTL", v)
		if err != nil {
			return nil, err
		}
		cfg.Session.TTL = d
	}
	if v := env("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	return &cfg, nil
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
