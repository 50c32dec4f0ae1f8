package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay. The API key is read from the environment only.
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Models struct {
		Evaluation  string `yaml:"evaluation"`
		Image       string `yaml:"image"`
		AspectRatio string `yaml:"aspectRatio"`
		Fake        *bool  `yaml:"fake"`
	} `yaml:"models"`

	Pipeline struct {
		StageTimeout string `yaml:"stageTimeout"`
	} `yaml:"pipeline"`

	Sessions struct {
		Max int    `yaml:"max"`
		TTL string `yaml:"ttl"`
	} `yaml:"sessions"`

	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if v := strings.TrimSpace(fc.Server.Port); v != "" {
		cfg.Port = normalizePort(v)
	}
	if v := strings.TrimSpace(fc.Server.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(fc.Models.Evaluation); v != "" {
		cfg.LLM.EvaluationModel = v
	}
	if v := strings.TrimSpace(fc.Models.Image); v != "" {
		cfg.LLM.ImageModel = v
	}
	if v := strings.TrimSpace(fc.Models.AspectRatio); v != "" {
		cfg.LLM.AspectRatio = v
	}
	if fc.Models.Fake != nil {
		cfg.LLM.Fake = *fc.Models.Fake
	}
	if v := strings.TrimSpace(fc.Pipeline.StageTimeout); v != "" {
		d, err := parseDuration("pipeline.stageTimeout", v)
		if err != nil {
			return err
		}
		cfg.StageTimeout = d
	}
	if fc.Sessions.Max > 0 {
		cfg.Session.Max = fc.Sessions.Max
	}
	if v := strings.TrimSpace(fc.Sessions.TTL); v != "" {
		d, err := parseDuration("sessions.ttl", v)
		if err != nil {
			return err
		}
		cfg.Session.TTL = d
	}
	if len(fc.CORS.Origins) > 0 {
		cfg.CORSOrigins = append([]string(nil), fc.CORS.Origins...)
	}
	return nil
}
