// Package analyzer mines a code-host repository for code smell examples and
// profiles its technology stack.
package analyzer

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"learninghour/internal/codehost"
	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/metrics"
	"learninghour/internal/models"
	"learninghour/internal/smells"
)

const (
	// MaxExamples caps the examples collected per analysis.
	MaxExamples = 5
	// itemsPerQuery is how many search hits are fetched for each query.
	itemsPerQuery = 3
)

// CodeSearcher is the slice of the code host the scanner needs.
type CodeSearcher interface {
	SearchCode(ctx context.Context, repo codehost.Repo, query string) ([]codehost.SearchItem, error)
	GetFileContent(ctx context.Context, repo codehost.Repo, path string) (string, error)
}

// FunctionLocator finds the function around a matched span.
type FunctionLocator interface {
	EnclosingFunction(path string, code []byte, start, end int) (models.CodeRegion, bool)
}

type Scanner struct {
	host    CodeSearcher
	locator FunctionLocator
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewScanner builds a scanner. locator and m may be nil.
func NewScanner(host CodeSearcher, locator FunctionLocator, logger logging.Logger, m *metrics.Metrics) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{
		host:    host,
		locator: locator,
		logger:  logger,
		metrics: m,
	}
}

// AnalyzeRepository searches repositoryURL for codeSmell and returns up to
// MaxExamples examples in the order they were found.
func (s *Scanner) AnalyzeRepository(ctx context.Context, repositoryURL, codeSmell string) (models.AnalysisResult, error) {
	repo, err := codehost.ParseRepoURL(repositoryURL)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if strings.TrimSpace(codeSmell) == "" {
		return models.AnalysisResult{}, errdefs.InvalidInput("code smell name is required")
	}

	patterns := smells.Patterns(codeSmell)
	yielded := make(map[string]bool)
	examples := make([]models.CodeExample, 0, MaxExamples)

	for _, query := range smells.Queries(codeSmell) {
		if len(examples) >= MaxExamples {
			break
		}
		if err := ctx.Err(); err != nil {
			return models.AnalysisResult{}, err
		}

		items, err := s.host.SearchCode(ctx, repo, query)
		if err != nil {
			if errors.Is(err, errdefs.ErrNotConfigured) {
				return models.AnalysisResult{}, err
			}
			s.logger.WarnContext(ctx, "code search failed, skipping query",
				"repository", repo.FullName(), "query", query, "error", err)
			continue
		}

		for _, item := range items[:min(len(items), itemsPerQuery)] {
			if len(examples) >= MaxExamples {
				break
			}
			if yielded[item.Path] {
				continue
			}

			example, found, err := s.scanFile(ctx, repo, item.Path, codeSmell, patterns)
			if err != nil {
				if errors.Is(err, errdefs.ErrNotConfigured) {
					return models.AnalysisResult{}, err
				}
				s.logger.WarnContext(ctx, "file fetch failed, skipping",
					"repository", repo.FullName(), "path", item.Path, "error", err)
				continue
			}
			if !found {
				continue
			}
			yielded[item.Path] = true
			examples = append(examples, example)
		}
	}

	if len(examples) == 0 {
		return models.AnalysisResult{}, errdefs.NotFound("no examples of %s found in %s", codeSmell, repositoryURL)
	}

	s.metrics.AddExamples(metricSmell(codeSmell), len(examples))
	s.logger.InfoContext(ctx, "repository analyzed",
		"repository", repo.FullName(), "smell", codeSmell, "examples", len(examples))

	return models.AnalysisResult{
		Examples:      examples,
		CodeSmell:     codeSmell,
		RepositoryURL: repositoryURL,
	}, nil
}

func (s *Scanner) scanFile(ctx context.Context, repo codehost.Repo, path, codeSmell string, patterns []*regexp.Regexp) (models.CodeExample, bool, error) {
	content, err := s.host.GetFileContent(ctx, repo, path)
	if err != nil {
		return models.CodeExample{}, false, err
	}

	m, ok := smells.FindMatch(content, patterns)
	if !ok {
		return models.CodeExample{}, false, nil
	}

	start, end := smells.LineSpan(content, m.Start, m.End)
	// Scored on whole lines: a chain the pattern cut short still counts.
	confidence, complexity, level := smells.Score(smells.LineText(content, m.Start, m.End), codeSmell)
	example := models.CodeExample{
		FilePath:         path,
		LineNumbers:      models.LineRange{Start: start, End: end},
		ConfidenceScore:  confidence,
		ComplexityRating: complexity,
		ExperienceLevel:  level,
		CodeSnippet:      m.Text,
	}
	if s.locator != nil {
		if region, ok := s.locator.EnclosingFunction(path, []byte(content), m.Start, m.End); ok {
			example.EnclosingFunction = &region
		}
	}
	return example, true, nil
}

// metricSmell keeps the label set bounded to the known smells.
func metricSmell(name string) string {
	if smells.IsKnown(name) {
		return smells.Lookup(name).Name
	}
	return "other"
}
