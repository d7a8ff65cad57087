package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type OllamaConfig struct {
	Host       string `yaml:"host"`
	EmbedModel string `yaml:"embed_model"`
	GenModel   string `yaml:"gen_model"`
}

type S3Config struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	PublicBaseURL   string `yaml:"public_base_url,omitempty"`
}

type Config struct {
	Port        string       `yaml:"port"`
	DatabaseURL string       `yaml:"database_url"`
	CORSOrigins []string     `yaml:"cors_origins"`
	Ollama      OllamaConfig `yaml:"ollama"`
	S3          S3Config     `yaml:"s3"`
}

// Load reads the optional YAML config file and applies env overrides on top.
// A missing file is fine; env vars alone can configure everything.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:        "8081",
		CORSOrigins: []string{"http://localhost:3000"},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		S3: S3Config{
			Region: "us-east-1",
			Bucket: "volunteer-proofs",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_PUBLIC_BASE_URL"); v != "" {
		cfg.S3.PublicBaseURL = v
	}
}
