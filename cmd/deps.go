package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"learninghour/internal/analyzer"
	"learninghour/internal/codehost"
	"learninghour/internal/codeimage"
	"learninghour/internal/config"
	"learninghour/internal/generator"
	"learninghour/internal/llm"
	"learninghour/internal/logging"
	"learninghour/internal/mcp"
	"learninghour/internal/metrics"
	"learninghour/internal/parser"
	"learninghour/internal/whiteboard"
)

// loadConfig layers .env and ~/.learninghour/config.json into the
// environment and reads the result.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}
	if err := config.LoadFromUserConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
	}
	return config.Load()
}

// newServer wires every component from cfg. reg may be nil to skip metrics.
func newServer(cfg config.Config, logger logging.Logger, reg prometheus.Registerer) (*mcp.Server, error) {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	host := codehost.New(codehost.Options{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Logger:  logger,
		Metrics: m,
	})
	llmClient := llm.NewClient(llm.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Logger:  logger,
		Metrics: m,
	})
	images, err := codeimage.New(nil, cfg.ImageCacheSize, logger, m)
	if err != nil {
		return nil, err
	}

	return mcp.NewServer(mcp.Deps{
		CodeHost:  host,
		Scanner:   analyzer.NewScanner(host, parser.NewLocator(), logger, m),
		TechStack: analyzer.NewTechStackAnalyzer(host, logger),
		Generator: generator.New(llmClient, logger),
		Whiteboard: func(accessToken string) mcp.BoardClient {
			if accessToken == "" {
				accessToken = cfg.MiroAccessToken
			}
			return whiteboard.New(whiteboard.Options{
				BaseURL: cfg.MiroAPIURL,
				Token:   accessToken,
				Logger:  logger,
				Metrics: m,
			})
		},
		Images:       images,
		MiroClientID: cfg.MiroClientID,
		Logger:       logger,
		Metrics:      m,
	}), nil
}
