// Package generator turns a topic into a validated Learning Hour session plan
// or refactoring walkthrough by prompting an LLM and checking its JSON reply.
package generator

import (
	"context"
	"fmt"
	"strings"

	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
)

// DefaultLanguage is used when GenerateCodeExample gets no language.
const DefaultLanguage = "javascript"

// Completer sends one prompt and returns the model's reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	llm    Completer
	logger logging.Logger
}

func New(llm Completer, logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{llm: llm, logger: logger}
}

// ValidStyle reports whether style names a known board style.
func ValidStyle(style string) bool {
	switch style {
	case StyleSlide, StyleVertical, StyleWorkshop:
		return true
	}
	return false
}

// GenerateSession produces a session plan for topic laid out in style
// (default slide). The result has already been post-processed.
func (g *Generator) GenerateSession(ctx context.Context, topic, style string) (SessionContent, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return SessionContent{}, errdefs.InvalidInput("topic is required")
	}
	if style == "" {
		style = StyleSlide
	}
	if !ValidStyle(style) {
		return SessionContent{}, errdefs.InvalidInput("unknown style %q: want slide, vertical or workshop", style)
	}

	op := fmt.Sprintf("generate session for %q", topic)
	raw, err := g.completeJSON(ctx, SessionPrompt(topic, style))
	if err != nil {
		return SessionContent{}, errdefs.Upstream(op, err)
	}
	content, err := ValidateSessionContentJSON([]byte(raw))
	if err != nil {
		return SessionContent{}, errdefs.Upstream(op, err)
	}

	g.logger.Info("session generated",
		"topic", topic,
		"style", style,
		"sections", len(content.MiroContent.Sections))
	return PostProcess(content), nil
}

// GenerateCodeExample produces a refactoring walkthrough for topic in
// language (default javascript).
func (g *Generator) GenerateCodeExample(ctx context.Context, topic, language string) (CodeExampleContent, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return CodeExampleContent{}, errdefs.InvalidInput("topic is required")
	}
	if language == "" {
		language = DefaultLanguage
	}

	op := fmt.Sprintf("generate code example for %q", topic)
	raw, err := g.completeJSON(ctx, CodeExamplePrompt(topic, language))
	if err != nil {
		return CodeExampleContent{}, errdefs.Upstream(op, err)
	}
	content, err := ValidateCodeExampleJSON([]byte(raw))
	if err != nil {
		return CodeExampleContent{}, errdefs.Upstream(op, err)
	}

	g.logger.Info("code example generated",
		"topic", topic,
		"language", language,
		"steps", len(content.RefactoringSteps))
	return content, nil
}

func (g *Generator) completeJSON(ctx context.Context, prompt string) (string, error) {
	reply, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	raw, err := extractJSONObject(reply)
	if err != nil {
		g.logger.Warn("reply carried no JSON object", "reply_bytes", len(reply))
		return "", err
	}
	return raw, nil
}
