package canvas

import (
	"context"
	"fmt"

	"learninghour/internal/generator"
	"learninghour/internal/layout"
)

const (
	slideSpacing    = 1000
	slideGap        = 100
	slideMinWidth   = 900
	slideMinHeight  = 700
	slideTitleWidth = 800
	codePairOffset  = 220
	codePairWidth   = 400
	codePairHeight  = 300

	stickiesPerRow = 3
	stickySpacingX = 200
	stickySpacingY = 140
)

// slides places one framed slide per section, left to right.
func (r *buildRun) slides(ctx context.Context, sections []generator.Section) error {
	x := 0.0
	for _, section := range sections {
		dims := layout.FrameDimensions(sectionText(section), section.Title)
		dims.Width = max(dims.Width, slideMinWidth)
		dims.Height = max(dims.Height, slideMinHeight)

		if err := r.slide(ctx, section, x, dims); err != nil {
			return fmt.Errorf("section %q: %w", section.Title, err)
		}
		x += float64(max(slideSpacing, dims.Width+slideGap))
	}
	return nil
}

func (r *buildRun) slide(ctx context.Context, section generator.Section, x float64, dims layout.Dimensions) error {
	top := -float64(dims.Height)/2 + 60
	if err := r.frame(ctx, section.Title, x, 0, dims); err != nil {
		return err
	}
	if _, err := r.text(ctx, "<h2>"+htmlText(section.Title)+"</h2>", x, top, slideTitleWidth); err != nil {
		return err
	}

	switch section.Type {
	case generator.SectionTextFrame:
		item, err := r.text(ctx, "<p>"+htmlText(section.Content)+"</p>", x, top+150, float64(min(dims.Width-100, layout.DefaultTextWidth)))
		if err != nil {
			return err
		}
		r.assignOverview(section, item)

	case generator.SectionStickyNotes:
		if len(section.Items) == 0 {
			return nil
		}
		notes, err := r.stickyGrid(ctx, section.Items, section.Color, x, 40)
		if err != nil {
			return err
		}
		r.assign(section, notes)

	case generator.SectionCodeBlock:
		if section.Code == "" {
			return nil
		}
		return r.code(ctx, section.Code, languageOf(section), section.Title, x, 40, layout.CodeBlockDimensions(section.Code))

	case generator.SectionCodeExamples:
		if section.BeforeCode == "" || section.AfterCode == "" {
			return nil
		}
		return r.beforeAfter(ctx, section, x-codePairOffset, x+codePairOffset, top+80, top+80+codePairHeight/2+40)
	}
	return nil
}

// beforeAfter draws the Before/After headers and the two code panes.
func (r *buildRun) beforeAfter(ctx context.Context, section generator.Section, leftX, rightX, headerY, codeY float64) error {
	lang := languageOf(section)
	pane := layout.Dimensions{Width: codePairWidth, Height: codePairHeight}
	for _, side := range []struct {
		label string
		code  string
		x     float64
	}{
		{label: "Before", code: section.BeforeCode, x: leftX},
		{label: "After", code: section.AfterCode, x: rightX},
	} {
		header := fmt.Sprintf("<h4>%s (%s)</h4>", side.label, htmlText(lang))
		if _, err := r.text(ctx, header, side.x, headerY, codePairWidth); err != nil {
			return err
		}
		if err := r.code(ctx, side.code, lang, side.label, side.x, codeY, pane); err != nil {
			return err
		}
	}
	return nil
}
