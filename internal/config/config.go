// Package config resolves runtime settings from the environment,
// ~/.learninghour/config.json and an optional .env file.
package config

import (
	"fmt"
	"strconv"
)

const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultGitHubAPIURL   = "https://api.github.com"
	DefaultMiroAPIURL     = "https://api.miro.com/v2"
	DefaultImageCacheSize = 128
)

// Config holds every setting the commands need. Credentials may be empty;
// the component that needs one reports it at first use.
type Config struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	GitHubToken     string
	GitHubAPIURL    string
	MiroAccessToken string
	MiroAPIURL      string
	MiroClientID    string
	LogLevel        string
	MetricsAddr     string
	ImageCacheSize  int
}

// Load reads configuration from the environment. Call LoadDotEnv and
// LoadFromUserConfig first so their values are visible here.
func Load() (cfg Config, err error) {
	cfg = Config{
		OpenAIAPIKey:    Get("OPENAI_API_KEY", "openai_key"),
		OpenAIBaseURL:   Get("OPENAI_BASE_URL", "openai_base_url"),
		OpenAIModel:     GetOr(DefaultOpenAIModel, "OPENAI_MODEL", "openai_model"),
		GitHubToken:     Get("GITHUB_TOKEN", "GITHUB_PERSONAL_ACCESS_TOKEN", "github_token"),
		GitHubAPIURL:    GetOr(DefaultGitHubAPIURL, "GITHUB_API_URL", "github_api_url"),
		MiroAccessToken: Get("MIRO_ACCESS_TOKEN", "miro_access_token"),
		MiroAPIURL:      GetOr(DefaultMiroAPIURL, "MIRO_API_URL", "miro_api_url"),
		MiroClientID:    Get("MIRO_CLIENT_ID", "miro_client_id"),
		LogLevel:        GetOr("info", "LOG_LEVEL", "log_level"),
		MetricsAddr:     Get("METRICS_ADDR", "metrics_addr"),
		ImageCacheSize:  DefaultImageCacheSize,
	}

	if raw := Get("IMAGE_CACHE_SIZE", "image_cache_size"); raw != "" {
		size, convErr := strconv.Atoi(raw)
		if convErr != nil || size <= 0 {
			err = fmt.Errorf("invalid IMAGE_CACHE_SIZE %q: must be a positive integer", raw)
			return cfg, err
		}
		cfg.ImageCacheSize = size
	}

	return cfg, err
}
