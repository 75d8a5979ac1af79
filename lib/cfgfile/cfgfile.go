// Package cfgfile layers operator-wide defaults (a YAML file, optionally
// preceded by a .env) underneath the per-invocation CLI flags cmd/sandrun
// parses. This mirrors the teacher's cmd/api/config.Load pattern of
// .env-then-getenv, adapted for a one-shot CLI: flags always win, the
// defaults file only fills in what a flag did not set.
package cfgfile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ghodss/yaml"
	"github.com/joho/godotenv"
)

// Defaults holds operator-supplied fallback values.
type Defaults struct {
	CgroupRoot          string `json:"cgroup_root"`
	DefaultMemoryLimit  string `json:"default_memory_limit"`
	DefaultTimeLimitMS  int64  `json:"default_time_limit_ms"`
	LogLevel            string `json:"log_level"`
	OtelEnabled         bool   `json:"otel_enabled"`
	OtelEndpoint        string `json:"otel_endpoint"`
	OtelServiceInstance string `json:"otel_service_instance"`
}

// Load reads an optional .env file (silently ignored if absent, matching
// godotenv.Load's own convention), seeds Defaults from environment
// variables, then overlays a YAML defaults file at path if one was given.
func Load(path string) (*Defaults, error) {
	_ = godotenv.Load()

	d := &Defaults{
		LogLevel:     getEnv("SANDRUN_LOG_LEVEL", "info"),
		OtelEnabled:  getEnvBool("SANDRUN_OTEL_ENABLED", false),
		OtelEndpoint: getEnv("SANDRUN_OTEL_ENDPOINT", "localhost:4317"),
	}

	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parse defaults file %s: %w", path, err)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
