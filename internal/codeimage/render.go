package codeimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	minWidth   = 800
	minHeight  = 400
	glyphWidth = 7
	lineHeight = 18
	tabWidth   = 4

	// Larger snippets are clipped so the canvas stays bounded.
	maxRows = 200
	maxCols = 160
)

type palette struct {
	background color.RGBA
	text       color.RGBA
	title      color.RGBA
}

type theme struct {
	dark  palette
	light palette
}

var themes = map[string]theme{
	"breeze":   {dark: pal(0x1d1f2b, 0xe6e6fa, 0x8f8fb5), light: pal(0xf4f3ff, 0x2d2a4a, 0x7a77a6)},
	"candy":    {dark: pal(0x2b1b2e, 0xffd6f5, 0xc48ab8), light: pal(0xfff0fb, 0x4a1f43, 0xa05d95)},
	"crimson":  {dark: pal(0x2a1215, 0xffd7d7, 0xc27b7b), light: pal(0xfff1f1, 0x4d1519, 0xa0494f)},
	"falcon":   {dark: pal(0x1f1f2e, 0xd4d4e0, 0x8a8aa3), light: pal(0xf2f2f7, 0x26263a, 0x6e6e8a)},
	"meadow":   {dark: pal(0x15231a, 0xd9f2df, 0x7fae8c), light: pal(0xf0faf2, 0x1c3a25, 0x5b8a68)},
	"midnight": {dark: pal(0x0d1117, 0xc9d1d9, 0x8b949e), light: pal(0xf6f8fa, 0x24292f, 0x57606a)},
	"raindrop": {dark: pal(0x0f1d2b, 0xd2e8ff, 0x7fa3c7), light: pal(0xeff6ff, 0x15304d, 0x51779e)},
	"sunset":   {dark: pal(0x2b1a10, 0xffe3cc, 0xc99471), light: pal(0xfff5ec, 0x4d2a12, 0xa0683f)},
}

func pal(bg, text, title uint32) palette {
	return palette{background: rgb(bg), text: rgb(text), title: rgb(title)}
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// PNGRenderer rasterizes code in a fixed 7x13 monospace face. Unknown themes
// fall back to midnight. The canvas is at least 800x400 and grows to fit up
// to maxRows lines of maxCols characters.
type PNGRenderer struct{}

func (PNGRenderer) Render(ctx context.Context, opts Options) (*CodeImage, error) {
	opts = withDefaults(opts)
	t, ok := themes[opts.Theme]
	if !ok {
		t = themes[DefaultTheme]
	}
	colors := t.light
	if opts.DarkMode {
		colors = t.dark
	}

	lines := clip(strings.Split(strings.ReplaceAll(opts.Code, "\t", strings.Repeat(" ", tabWidth)), "\n"))
	title := clipLine(opts.Title)
	rows := len(lines)
	if title != "" {
		rows++
	}
	cols := len([]rune(title))
	for _, line := range lines {
		cols = max(cols, len([]rune(line)))
	}

	width := max(minWidth, 2*opts.Padding+cols*glyphWidth)
	height := max(minHeight, 2*opts.Padding+rows*lineHeight)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colors.background), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}
	y := opts.Padding + face.Ascent
	if title != "" {
		drawer.Src = image.NewUniform(colors.title)
		drawer.Dot = fixed.P(opts.Padding, y)
		drawer.DrawString(title)
		y += lineHeight
	}
	drawer.Src = image.NewUniform(colors.text)
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawer.Dot = fixed.P(opts.Padding, y)
		drawer.DrawString(line)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	return &CodeImage{
		URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		PNG:    data,
		Width:  width,
		Height: height,
	}, nil
}

// clip keeps the first maxRows lines, marking the cut with "...", and clips
// each line to maxCols characters.
func clip(lines []string) []string {
	if len(lines) > maxRows {
		lines = append(lines[:maxRows-1:maxRows-1], "...")
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = clipLine(line)
	}
	return out
}

func clipLine(line string) string {
	r := []rune(line)
	if len(r) <= maxCols {
		return line
	}
	return string(r[:maxCols-3]) + "..."
}
