// Package codeimage renders code snippets to PNG images for the whiteboard.
// Renders are memoized in a bounded LRU cache and serialized so that at most
// one is in flight.
package codeimage

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"learninghour/internal/logging"
	"learninghour/internal/metrics"
	"learninghour/internal/utils"
)

const (
	DefaultTheme     = "midnight"
	DefaultPadding   = 32
	DefaultCacheSize = 128
)

// Options describes one image. Code is the only required field.
type Options struct {
	Code     string
	Language string
	Theme    string
	DarkMode bool
	Title    string
	Padding  int
}

// CodeImage is a rendered PNG. URL is a data: URL of the same bytes.
type CodeImage struct {
	URL    string
	PNG    []byte
	Width  int
	Height int
}

// Renderer turns options into an image. Implementations need not be safe
// for concurrent use; Generator never calls Render concurrently.
type Renderer interface {
	Render(ctx context.Context, opts Options) (*CodeImage, error)
}

type cacheKey struct {
	codeHash string
	language string
	theme    string
	darkMode bool
}

type Generator struct {
	renderer Renderer
	cache    *lru.Cache[cacheKey, *CodeImage]
	renderMu sync.Mutex
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// New builds a Generator. A nil renderer selects PNGRenderer; a
// non-positive cacheSize selects DefaultCacheSize.
func New(renderer Renderer, cacheSize int, logger logging.Logger, m *metrics.Metrics) (*Generator, error) {
	if renderer == nil {
		renderer = PNGRenderer{}
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	cache, err := lru.New[cacheKey, *CodeImage](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &Generator{renderer: renderer, cache: cache, logger: logger, metrics: m}, nil
}

// Generate returns the cached image for opts or renders a new one. Callers
// asking for the same code, language, theme and mode get the same pointer.
func (g *Generator) Generate(ctx context.Context, opts Options) (*CodeImage, error) {
	opts = withDefaults(opts)
	key := cacheKey{
		codeHash: utils.HashContent(opts.Code),
		language: opts.Language,
		theme:    opts.Theme,
		darkMode: opts.DarkMode,
	}

	if img, ok := g.cache.Get(key); ok {
		g.metrics.CacheLookup(true)
		return img, nil
	}

	g.renderMu.Lock()
	defer g.renderMu.Unlock()

	// Another caller may have rendered it while we waited.
	if img, ok := g.cache.Get(key); ok {
		g.metrics.CacheLookup(true)
		return img, nil
	}
	g.metrics.CacheLookup(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := g.renderer.Render(ctx, opts)
	if err != nil {
		g.logger.Warn("code image render failed", "language", opts.Language, "error", err)
		return nil, fmt.Errorf("render code image: %w", err)
	}
	g.cache.Add(key, img)
	g.logger.Debug("code image rendered", "language", opts.Language, "width", img.Width, "height", img.Height)
	return img, nil
}

// Len reports how many images are cached.
func (g *Generator) Len() int {
	return g.cache.Len()
}

func withDefaults(opts Options) Options {
	if opts.Theme == "" {
		opts.Theme = DefaultTheme
	}
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}
	if opts.Language == "" {
		opts.Language = "auto"
	}
	return opts
}

var fenceRe = regexp.MustCompile("^```\\w*\\n([\\s\\S]*?)\\n```$")

// CleanSnippet strips a markdown code fence that wraps the whole of code.
func CleanSnippet(code string) string {
	if m := fenceRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return code
}
