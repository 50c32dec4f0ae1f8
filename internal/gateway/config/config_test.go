package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.EvaluationModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.LLM.ImageModel)
	assert.Equal(t, "16:9", cfg.LLM.AspectRatio)
	assert.Zero(t, cfg.StageTimeout)
	assert.Equal(t, 256, cfg.Session.Max)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.LLM.Fake)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":               "9000",
		"APP_ENV":            "prod",
		"GOOGLE_API_KEY":     "fallback",
		"EVALUATION_MODEL":   "eval-x",
		"IMAGE_MODEL":        "img-x",
		"IMAGE_ASPECT_RATIO": "1:1",
		"LLM_FAKE":           "true",
		"STAGE_TIMEOUT":      "45s",
		"SESSION_MAX":        "3",
		"SESSION_TTL":        "5m",
		"CORS_ORIGINS":       "https://a.example, https://b.example",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "fallback", cfg.LLM.APIKey)
	assert.Equal(t, "eval-x", cfg.LLM.EvaluationModel)
	assert.Equal(t, "img-x", cfg.LLM.ImageModel)
	assert.Equal(t, "1:1", cfg.LLM.AspectRatio)
	assert.True(t, cfg.LLM.Fake)
	assert.Equal(t, 45*time.Second, cfg.StageTimeout)
	assert.Equal(t, 3, cfg.Session.Max)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnv_GeminiKeyWins(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"GEMINI_API_KEY": "primary", "GOOGLE_API_KEY": "fallback"}))
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.LLM.APIKey)
}

func TestFromEnv_Invalid(t *testing.T) {
	for _, kv := range [][2]string{
		{"LLM_FAKE", "maybe"},
		{"STAGE_TIMEOUT", "soon"},
		{"STAGE_TIMEOUT", "-1s"},
		{"SESSION_MAX", "0"},
		{"SESSION_TTL", "x"},
	} {
		_, err := FromEnv(envMap(map[string]string{kv[0]: kv[1]}))
		assert.Error(t, err, "%s=%s", kv[0], kv[1])
	}
}

func TestFromEnv_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideaeval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "127.0.0.1:7000"
models:
  image: img-from-file
  aspectRatio: "4:3"
  fake: true
pipeline:
  stageTimeout: 2m
sessions:
  max: 10
cors:
  origins: ["https://ui.example"]
`), 0o644))

	cfg, err := FromEnv(envMap(map[string]string{
		"CONFIG_FILE": path,
		"IMAGE_MODEL": "img-from-env",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Port)
	assert.Equal(t, "img-from-env", cfg.LLM.ImageModel, "environment wins over the file")
	assert.Equal(t, "4:3", cfg.LLM.AspectRatio)
	assert.True(t, cfg.LLM.Fake)
	assert.Equal(t, 2*time.Minute, cfg.StageTimeout)
	assert.Equal(t, 10, cfg.Session.Max)
	assert.Equal(t, []string{"https://ui.example"}, cfg.CORSOrigins)
}

func TestFromEnv_MissingFile(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"CONFIG_FILE": filepath.Join(t.TempDir(), "nope.yaml")}))
	assert.Error(t, err)
}
