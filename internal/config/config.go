// Package config loads the tools' configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read from the working directory when present
const DefaultEnvFile = ".env"

// NewConfig loads configuration from the environment, falling back to
// DefaultEnvFile for variables that are not set.
func NewConfig() (*Config, error) {
	return Load(DefaultEnvFile)
}

// Load reads envFile into the process environment without overriding
// variables already set, then decodes the configuration.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Pivotal.ProjectIDs = splitList(cfg.Pivotal.ProjectIDs)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("github.owner", "concord-consortium")

	v.SetDefault("jira.base_url", "https://concord-consortium.atlassian.net")

	v.SetDefault("pivotal.base_url", "https://www.pivotaltracker.com/services/v5")
	v.SetDefault("pivotal.project_ids", []string{"2441249", "2441242", "2556922"})

	v.SetDefault("openai.model", "gpt-4o-mini")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"github.token",
		"github.owner",
		"github.api_url",
		"jira.user",
		"jira.token",
		"jira.base_url",
		"pivotal.base_url",
		"pivotal.project_ids",
		"openai.api_key",
		"openai.model",
		"openai.base_url",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// names kept from the original scripts' .env files
	_ = v.BindEnv("pivotal.token", "PT_TOKEN")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// splitList flattens comma separated entries and drops blanks
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
