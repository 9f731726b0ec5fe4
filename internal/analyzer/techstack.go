package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"

	"learninghour/internal/codehost"
	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/models"
	"learninghour/internal/utils"
)

const maxPrimaryLanguages = 3

// RepositoryReader is the slice of the code host the stack analyzer needs.
type RepositoryReader interface {
	GetRepository(ctx context.Context, repo codehost.Repo) (codehost.Repository, error)
	ListLanguages(ctx context.Context, repo codehost.Repo) ([]string, error)
	ListDirectory(ctx context.Context, repo codehost.Repo, path string) ([]codehost.Entry, error)
	GetFileContent(ctx context.Context, repo codehost.Repo, path string) (string, error)
}

// buildTools maps root-level files to the build tool they imply.
var buildTools = map[string]string{
	"package.json":       "npm",
	"yarn.lock":          "Yarn",
	"pnpm-lock.yaml":     "pnpm",
	"go.mod":             "Go modules",
	"pom.xml":            "Maven",
	"build.gradle":       "Gradle",
	"build.gradle.kts":   "Gradle",
	"requirements.txt":   "pip",
	"pyproject.toml":     "pyproject",
	"Pipfile":            "Pipenv",
	"Cargo.toml":         "Cargo",
	"Gemfile":            "Bundler",
	"composer.json":      "Composer",
	"Makefile":           "Make",
	"Dockerfile":         "Docker",
	"webpack.config.js":  "webpack",
	"vite.config.js":     "Vite",
	"vite.config.ts":     "Vite",
	"tsconfig.json":      "tsc",
	"docker-compose.yml": "Docker Compose",
}

// frameworks maps a dependency name (or Go module path prefix) to a framework.
var frameworks = map[string]string{
	"express":                  "Express",
	"koa":                      "Koa",
	"fastify":                  "Fastify",
	"@nestjs/core":             "NestJS",
	"react":                    "React",
	"next":                     "Next.js",
	"vue":                      "Vue",
	"@angular/core":            "Angular",
	"svelte":                   "Svelte",
	"django":                   "Django",
	"flask":                    "Flask",
	"fastapi":                  "FastAPI",
	"github.com/gin-gonic/gin": "Gin",
	"github.com/labstack/echo": "Echo",
	"github.com/gofiber/fiber": "Fiber",
	"github.com/go-chi/chi":    "chi",
	"github.com/spf13/cobra":   "Cobra",
	"google.golang.org/grpc":   "gRPC",
	"github.com/gorilla/mux":   "Gorilla mux",
	"github.com/urfave/cli":    "urfave/cli",
}

var testFrameworks = map[string]string{
	"jest":                        "Jest",
	"mocha":                       "Mocha",
	"vitest":                      "Vitest",
	"jasmine":                     "Jasmine",
	"@testing-library/react":      "React Testing Library",
	"cypress":                     "Cypress",
	"@playwright/test":            "Playwright",
	"pytest":                      "pytest",
	"nose2":                       "nose2",
	"hypothesis":                  "Hypothesis",
	"github.com/stretchr/testify": "testify",
	"github.com/onsi/ginkgo":      "Ginkgo",
	"github.com/onsi/gomega":      "Gomega",
	"github.com/golang/mock":      "gomock",
	"go.uber.org/mock":            "gomock",
}

// layoutPatterns maps root directory names to the architecture they suggest.
var layoutPatterns = map[string]string{
	"controllers": "MVC",
	"views":       "MVC",
	"routes":      "REST API",
	"api":         "REST API",
	"components":  "Component-based UI",
	"services":    "Service layer",
	"internal":    "Go standard layout",
	"cmd":         "Go standard layout",
	"migrations":  "Database migrations",
	"k8s":         "Kubernetes deployment",
	"charts":      "Kubernetes deployment",
	"proto":       "RPC contracts",
	"packages":    "Monorepo",
}

type TechStackAnalyzer struct {
	host   RepositoryReader
	logger logging.Logger
}

func NewTechStackAnalyzer(host RepositoryReader, logger logging.Logger) *TechStackAnalyzer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &TechStackAnalyzer{host: host, logger: logger}
}

// AnalyzeTechStack profiles the repository from its metadata, root listing
// and dependency manifests. Only the metadata call is required to succeed.
func (a *TechStackAnalyzer) AnalyzeTechStack(ctx context.Context, repositoryURL string) (models.TechStackProfile, error) {
	repo, err := codehost.ParseRepoURL(repositoryURL)
	if err != nil {
		return models.TechStackProfile{}, err
	}

	info, err := a.host.GetRepository(ctx, repo)
	if err != nil {
		return models.TechStackProfile{}, fmt.Errorf("analyze tech stack of %s: %w", repo.FullName(), err)
	}

	profile := models.TechStackProfile{
		PrimaryLanguages:      []string{},
		Frameworks:            []string{},
		TestingFrameworks:     []string{},
		BuildTools:            []string{},
		ArchitecturalPatterns: []string{},
		PackageDependencies:   []string{},
	}

	langs, err := a.host.ListLanguages(ctx, repo)
	if err != nil {
		if errors.Is(err, errdefs.ErrNotConfigured) {
			return models.TechStackProfile{}, err
		}
		a.logger.WarnContext(ctx, "language breakdown unavailable", "repository", repo.FullName(), "error", err)
	}
	if len(langs) == 0 && info.Language != "" {
		langs = []string{info.Language}
	}
	profile.PrimaryLanguages = append(profile.PrimaryLanguages, langs[:min(len(langs), maxPrimaryLanguages)]...)

	entries, err := a.host.ListDirectory(ctx, repo, "")
	if err != nil {
		if errors.Is(err, errdefs.ErrNotConfigured) {
			return models.TechStackProfile{}, err
		}
		a.logger.WarnContext(ctx, "root listing unavailable", "repository", repo.FullName(), "error", err)
	}

	var deps, buildList, patterns []string
	for _, entry := range entries {
		switch entry.Type {
		case "dir":
			if p, ok := layoutPatterns[strings.ToLower(entry.Name)]; ok {
				patterns = append(patterns, p)
			}
		case "file":
			if tool, ok := buildTools[entry.Name]; ok {
				buildList = append(buildList, tool)
			}
			parse, ok := manifestParsers[entry.Name]
			if !ok {
				continue
			}
			content, err := a.host.GetFileContent(ctx, repo, entry.Path)
			if err != nil {
				a.logger.WarnContext(ctx, "manifest fetch failed", "path", entry.Path, "error", err)
				continue
			}
			names, err := parse(content)
			if err != nil {
				a.logger.WarnContext(ctx, "manifest parse failed", "path", entry.Path, "error", err)
				continue
			}
			deps = append(deps, names...)
			if entry.Name == "go.mod" {
				profile.TestingFrameworks = append(profile.TestingFrameworks, "go test")
			}
		}
	}

	profile.PackageDependencies = utils.Dedupe(deps)
	profile.BuildTools = utils.Dedupe(buildList)
	profile.ArchitecturalPatterns = utils.Dedupe(patterns)
	profile.Frameworks = matchTable(profile.PackageDependencies, frameworks)
	profile.TestingFrameworks = utils.Dedupe(append(profile.TestingFrameworks, matchTable(profile.PackageDependencies, testFrameworks)...))

	a.logger.InfoContext(ctx, "tech stack analyzed",
		"repository", repo.FullName(),
		"languages", len(profile.PrimaryLanguages),
		"dependencies", len(profile.PackageDependencies))
	return profile, nil
}

// GenerateStackSpecificContent phrases facilitation hints for topic in terms
// of the profiled stack.
func GenerateStackSpecificContent(topic string, profile models.TechStackProfile) models.StackSpecificContent {
	framework := firstOr(profile.Frameworks, firstOr(profile.PrimaryLanguages, "Application"))
	testFramework := firstOr(profile.TestingFrameworks, "Unit")
	language := firstOr(profile.PrimaryLanguages, "Language")
	dependency := firstOr(profile.PackageDependencies, "the standard library")

	return models.StackSpecificContent{
		Examples:                 fmt.Sprintf("%s code demonstrating %s principles in the team's own patterns", framework, topic),
		TestExamples:             fmt.Sprintf("%s testing examples that match existing test structure for %s", testFramework, topic),
		RefactoringOpportunities: fmt.Sprintf("%s-specific %s refactoring opportunities", language, topic),
		PackageReferences:        fmt.Sprintf("Using %s for %s implementations", dependency, topic),
	}
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}

// matchTable returns the table values whose key equals a dependency or is a
// module path prefix of it, sorted for stable output.
func matchTable(deps []string, table map[string]string) []string {
	var out []string
	for _, dep := range deps {
		for key, name := range table {
			if dep == key || strings.HasPrefix(dep, key+"/") {
				out = append(out, name)
			}
		}
	}
	out = utils.Dedupe(out)
	sort.Strings(out)
	return out
}

var manifestParsers = map[string]func(string) ([]string, error){
	"package.json":     parsePackageJSON,
	"go.mod":           parseGoMod,
	"requirements.txt": parseRequirements,
}

func parsePackageJSON(content string) ([]string, error) {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}
	var names []string
	for _, group := range []map[string]string{manifest.Dependencies, manifest.DevDependencies} {
		keys := make([]string, 0, len(group))
		for name := range group {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		names = append(names, keys...)
	}
	return names, nil
}

func parseGoMod(content string) ([]string, error) {
	f, err := modfile.ParseLax("go.mod", []byte(content), nil)
	if err != nil {
		return nil, fmt.Errorf("parse go.mod: %w", err)
	}
	var names []string
	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		names = append(names, req.Mod.Path)
	}
	return names, nil
}

func parseRequirements(content string) ([]string, error) {
	var names []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.IndexAny(line, "=<>~!;[ "); i >= 0 {
			line = line[:i]
		}
		names = append(names, strings.ToLower(line))
	}
	return names, nil
}
