// Package report prints command results for a terminal: glyph-prefixed
// status lines, example listings and indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"learninghour/internal/models"
)

const snippetWidth = 80

type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter writes to w. Colors follow color.NoColor.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.out, color.GreenString("✓ "+format, args...))
}

func (c *Console) Step(format string, args ...any) {
	fmt.Fprintln(c.out, color.CyanString("→ ")+fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.out, color.YellowString("⚠ "+format, args...))
}

func (c *Console) Fail(format string, args ...any) {
	fmt.Fprintln(c.out, color.RedString("✗ "+format, args...))
}

// JSON prints v indented by two spaces.
func (c *Console) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// Analysis lists each example as path:line [COMPLEXITY] with its score and a
// one-line snippet, then a summary.
func (c *Console) Analysis(result models.AnalysisResult) {
	for _, ex := range result.Examples {
		loc := fmt.Sprintf("%s:%d", ex.FilePath, ex.LineNumbers.Start)
		fmt.Fprintf(c.out, "%s: [%s] confidence %.2f, %s audience\n",
			loc, complexityColor(ex.ComplexityRating).Sprint(strings.ToUpper(string(ex.ComplexityRating))),
			ex.ConfidenceScore, ex.ExperienceLevel)
		if ex.EnclosingFunction != nil {
			fmt.Fprintf(c.out, "\tIn: %s (lines %d-%d)\n",
				ex.EnclosingFunction.Name, ex.EnclosingFunction.Lines.Start, ex.EnclosingFunction.Lines.End)
		}
		fmt.Fprintf(c.out, "\tCode: %s\n", color.CyanString(truncate(firstLine(ex.CodeSnippet), snippetWidth)))
	}
	c.Success("found %d examples of %s in %s", len(result.Examples), result.CodeSmell, result.RepositoryURL)
}

func complexityColor(r models.ComplexityRating) *color.Color {
	switch r {
	case models.ComplexityHigh:
		return color.New(color.FgRed, color.Bold)
	case models.ComplexityMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgBlue, color.Bold)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return s
}
