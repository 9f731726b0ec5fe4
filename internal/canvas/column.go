package canvas

import (
	"context"
	"fmt"

	"learninghour/internal/generator"
	"learninghour/internal/layout"
)

const (
	columnStartY    = -400
	columnSpacing   = 300
	columnTitleX    = -500
	columnTitleW    = 200
	columnContentX  = -200
	columnContentW  = 600
	columnPairLeft  = -500
	columnPairRight = 100
)

// column stacks sections top to bottom with titles in a left-hand column.
func (r *buildRun) column(ctx context.Context, sections []generator.Section) error {
	y := float64(columnStartY)
	for _, section := range sections {
		extra, err := r.row(ctx, section, y)
		if err != nil {
			return fmt.Errorf("section %q: %w", section.Title, err)
		}
		y += columnSpacing + extra
	}
	return nil
}

// row draws one section at y and returns how much taller than the base
// spacing it turned out.
func (r *buildRun) row(ctx context.Context, section generator.Section, y float64) (float64, error) {
	if _, err := r.text(ctx, "<h3>"+htmlText(section.Title)+"</h3>", columnTitleX, y, columnTitleW); err != nil {
		return 0, err
	}

	switch section.Type {
	case generator.SectionTextFrame:
		body := "<h2>" + htmlText(section.Title) + "</h2><p>" + htmlText(section.Content) + "</p>"
		item, err := r.text(ctx, body, columnContentX, y, columnContentW)
		if err != nil {
			return 0, err
		}
		r.assignOverview(section, item)
		return 200, nil

	case generator.SectionStickyNotes:
		if len(section.Items) == 0 {
			return 0, nil
		}
		notes, err := r.stickyGrid(ctx, section.Items, section.Color, columnContentX+columnContentW/2, y)
		if err != nil {
			return 0, err
		}
		r.assign(section, notes)
		rows := (len(section.Items) + stickiesPerRow - 1) / stickiesPerRow
		return float64((rows - 1) * stickySpacingY), nil

	case generator.SectionCodeBlock:
		if section.Code == "" {
			return 0, nil
		}
		dims := layout.CodeBlockDimensions(section.Code)
		dims.Width = min(dims.Width, columnContentW)
		if err := r.code(ctx, section.Code, languageOf(section), section.Title, columnContentX, y, dims); err != nil {
			return 0, err
		}
		return 350, nil

	case generator.SectionCodeExamples:
		if section.BeforeCode == "" || section.AfterCode == "" {
			return 0, nil
		}
		if err := r.beforeAfter(ctx, section, columnPairLeft, columnPairRight, y, y+50); err != nil {
			return 0, err
		}
		return 400, nil
	}
	return 0, nil
}
