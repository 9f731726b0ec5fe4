// Package layout sizes whiteboard elements from their text using a fixed
// monospace pixel model.
package layout

import (
	"strings"
	"unicode/utf8"
)

const (
	charWidth  = 10
	lineHeight = 28
	padding    = 40
	minWidth   = 300
	minHeight  = 200
	maxWidth   = 1200

	// DefaultTextWidth is the wrap width used when callers have no better bound.
	DefaultTextWidth = 800
	titleWrapWidth   = 600
	titleAllowance   = 100

	emptyFrameMinWidth = 400
	emptyFrameHeight   = 300

	codeLineHeight = 24
	codeMinWidth   = 400
	codeMaxWidth   = 1000
	codeMinHeight  = 200
)

// Dimensions is an element size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TextDimensions wraps text at wrapWidth and returns the padded box that
// holds it, never smaller than 300x200.
func TextDimensions(text string, wrapWidth int) Dimensions {
	if text == "" {
		return Dimensions{Width: minWidth, Height: minHeight}
	}

	lines := Wrap(text, wrapWidth)
	widest := 0
	for _, line := range lines {
		widest = max(widest, utf8.RuneCountInString(line)*charWidth)
	}
	contentWidth := min(widest, wrapWidth)
	contentHeight := len(lines) * lineHeight

	return Dimensions{
		Width:  max(contentWidth+padding*2, minWidth),
		Height: max(contentHeight+padding*2, minHeight),
	}
}

// FrameDimensions sizes a titled frame. Title and content are measured
// separately; the frame is at least as wide as the title plus 100px and at
// most 1200px, with 100px of extra height for the title.
func FrameDimensions(content, title string) Dimensions {
	titleDims := TextDimensions(title, titleWrapWidth)
	if content == "" {
		return Dimensions{
			Width:  max(titleDims.Width, emptyFrameMinWidth),
			Height: emptyFrameHeight,
		}
	}

	contentDims := TextDimensions(content, DefaultTextWidth)
	return Dimensions{
		Width:  min(max(contentDims.Width, titleDims.Width+titleAllowance), maxWidth),
		Height: contentDims.Height + titleAllowance,
	}
}

// CodeBlockDimensions sizes a code block without wrapping: one row per source
// line, width clamped to [400, 1000].
func CodeBlockDimensions(code string) Dimensions {
	lines := strings.Split(code, "\n")
	longest := 0
	for _, line := range lines {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	return Dimensions{
		Width:  min(max(longest*charWidth+padding*2, codeMinWidth), codeMaxWidth),
		Height: max(len(lines)*codeLineHeight+padding*2, codeMinHeight),
	}
}

// Wrap greedily packs space-separated words into lines of at most
// wrapWidth/10 characters. A word longer than the limit gets a line to itself.
func Wrap(text string, wrapWidth int) []string {
	limit := wrapWidth / charWidth
	var lines []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= limit {
			if current == "" {
				current = word
			} else {
				current += " " + word
			}
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
