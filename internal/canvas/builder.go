// Package canvas lays a generated session out on a whiteboard, either as
// left-to-right slides or as a single top-to-bottom column.
package canvas

import (
	"context"
	"fmt"
	"html"
	"strings"

	"learninghour/internal/codeimage"
	"learninghour/internal/generator"
	"learninghour/internal/layout"
	"learninghour/internal/logging"
	"learninghour/internal/whiteboard"
)

// Whiteboard is the subset of whiteboard.Client the builder drives.
type Whiteboard interface {
	CreateBoard(ctx context.Context, name, description string) (whiteboard.Board, error)
	GetBoard(ctx context.Context, boardID string) (whiteboard.Board, error)
	CreateFrame(ctx context.Context, boardID string, f whiteboard.Frame) (whiteboard.Item, error)
	CreateStickyNote(ctx context.Context, boardID string, n whiteboard.StickyNote) (whiteboard.Item, error)
	CreateText(ctx context.Context, boardID string, t whiteboard.Text) (whiteboard.Item, error)
	CreateShape(ctx context.Context, boardID string, s whiteboard.Shape) (whiteboard.Item, error)
	CreateImage(ctx context.Context, boardID string, img whiteboard.Image) (whiteboard.Item, error)
}

// ImageGenerator renders code to an image; *codeimage.Generator satisfies it.
type ImageGenerator interface {
	Generate(ctx context.Context, opts codeimage.Options) (*codeimage.CodeImage, error)
}

// BoardLayout summarizes what Build created.
type BoardLayout struct {
	BoardID   string       `json:"boardId"`
	ViewLink  string       `json:"viewLink"`
	Style     string       `json:"style"`
	ItemCount int          `json:"itemCount"`
	Sections  SectionItems `json:"sections"`
}

// SectionItems holds the items created for the well-known sections.
type SectionItems struct {
	Overview    *whiteboard.Item  `json:"overview,omitempty"`
	Objectives  []whiteboard.Item `json:"objectives"`
	Activities  []whiteboard.Item `json:"activities"`
	Discussions []whiteboard.Item `json:"discussions"`
	Takeaways   []whiteboard.Item `json:"takeaways"`
}

type Builder struct {
	board  Whiteboard
	images ImageGenerator
	logger logging.Logger
}

// New creates a Builder. images may be nil, in which case code is always
// drawn as a code block shape.
func New(board Whiteboard, images ImageGenerator, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{board: board, images: images, logger: logger}
}

// Build creates a board for session and fills it section by section. A
// failure stops the build; items already created stay on the board and the
// error names the board.
func (b *Builder) Build(ctx context.Context, session generator.SessionContent) (BoardLayout, error) {
	title := session.MiroContent.BoardTitle
	if title == "" {
		title = "Learning Hour: " + session.Topic
	}
	board, err := b.board.CreateBoard(ctx, title, session.SessionOverview)
	if err != nil {
		return BoardLayout{}, fmt.Errorf("create board %q: %w", title, err)
	}

	style := session.MiroContent.Style
	if style == "" {
		style = generator.StyleSlide
	}
	run := &buildRun{
		Builder: b,
		boardID: board.ID,
		out: BoardLayout{
			BoardID:  board.ID,
			ViewLink: board.ViewLink,
			Style:    style,
			Sections: SectionItems{
				Objectives:  []whiteboard.Item{},
				Activities:  []whiteboard.Item{},
				Discussions: []whiteboard.Item{},
				Takeaways:   []whiteboard.Item{},
			},
		},
	}

	if style == generator.StyleSlide {
		err = run.slides(ctx, session.MiroContent.Sections)
	} else {
		err = run.column(ctx, session.MiroContent.Sections)
	}
	if err != nil {
		return BoardLayout{}, fmt.Errorf("build board %s: %w", board.ID, err)
	}

	if run.out.ViewLink == "" {
		fetched, err := b.board.GetBoard(ctx, board.ID)
		if err != nil {
			return BoardLayout{}, fmt.Errorf("fetch view link of board %s: %w", board.ID, err)
		}
		run.out.ViewLink = fetched.ViewLink
	}

	b.logger.InfoContext(ctx, "board built",
		"board_id", board.ID,
		"style", style,
		"sections", len(session.MiroContent.Sections),
		"items", run.out.ItemCount)
	return run.out, nil
}

// buildRun carries per-board state through one Build.
type buildRun struct {
	*Builder
	boardID string
	out     BoardLayout
}

func (r *buildRun) created(item whiteboard.Item, err error) (whiteboard.Item, error) {
	if err == nil {
		r.out.ItemCount++
	}
	return item, err
}

func (r *buildRun) text(ctx context.Context, content string, x, y, width float64) (whiteboard.Item, error) {
	return r.created(r.board.CreateText(ctx, r.boardID, whiteboard.Text{
		Content:  content,
		Position: whiteboard.Position{X: x, Y: y},
		Width:    width,
	}))
}

func (r *buildRun) frame(ctx context.Context, title string, x, y float64, dims layout.Dimensions) error {
	_, err := r.created(r.board.CreateFrame(ctx, r.boardID, whiteboard.Frame{
		Title:    title,
		Position: whiteboard.Position{X: x, Y: y},
		Geometry: whiteboard.Geometry{Width: float64(dims.Width), Height: float64(dims.Height)},
	}))
	return err
}

// stickyGrid lays items out three per row, centred on (cx, cy).
func (r *buildRun) stickyGrid(ctx context.Context, items []string, color string, cx, cy float64) ([]whiteboard.Item, error) {
	perRow := min(stickiesPerRow, len(items))
	rows := (len(items) + perRow - 1) / perRow
	startX := cx - float64(perRow-1)*stickySpacingX/2
	startY := cy - float64(rows-1)*stickySpacingY/2

	notes := make([]whiteboard.Item, 0, len(items))
	for i, item := range items {
		note, err := r.created(r.board.CreateStickyNote(ctx, r.boardID, whiteboard.StickyNote{
			Content: "• " + item,
			Color:   color,
			Position: whiteboard.Position{
				X: startX + float64(i%perRow)*stickySpacingX,
				Y: startY + float64(i/perRow)*stickySpacingY,
			},
		}))
		if err != nil {
			return nil, fmt.Errorf("sticky note %d: %w", i+1, err)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// code places code as a rendered image when an image generator is set and
// succeeds, and as a code block shape otherwise.
func (r *buildRun) code(ctx context.Context, code, language, label string, x, y float64, dims layout.Dimensions) error {
	code = codeimage.CleanSnippet(code)
	pos := whiteboard.Position{X: x, Y: y}

	if r.images != nil {
		img, err := r.images.Generate(ctx, codeimage.Options{
			Code:     code,
			Language: language,
			Theme:    codeimage.DefaultTheme,
			DarkMode: true,
			Title:    label,
		})
		if err == nil {
			_, err = r.created(r.board.CreateImage(ctx, r.boardID, whiteboard.Image{
				PNG:      img.PNG,
				Title:    label,
				Position: pos,
				Width:    float64(dims.Width),
			}))
			return err
		}
		r.logger.WarnContext(ctx, "code image unavailable, drawing code block", "label", label, "error", err)
	}

	geom := whiteboard.Geometry{Width: float64(dims.Width), Height: float64(dims.Height)}
	_, err := r.created(r.board.CreateShape(ctx, r.boardID, whiteboard.CodeBlock(code, pos, geom)))
	return err
}

func (r *buildRun) assign(section generator.Section, items []whiteboard.Item) {
	lower := strings.ToLower(section.Title)
	switch {
	case strings.Contains(lower, "objective"):
		r.out.Sections.Objectives = items
	case strings.Contains(lower, "activit"):
		r.out.Sections.Activities = items
	case strings.Contains(lower, "discussion"):
		r.out.Sections.Discussions = items
	case strings.Contains(lower, "takeaway"):
		r.out.Sections.Takeaways = items
	}
}

func (r *buildRun) assignOverview(section generator.Section, item whiteboard.Item) {
	if r.out.Sections.Overview == nil && strings.Contains(strings.ToLower(section.Title), "overview") {
		r.out.Sections.Overview = &item
	}
}

func languageOf(section generator.Section) string {
	if section.Language != "" {
		return section.Language
	}
	return generator.DefaultLanguage
}

// htmlText escapes s and keeps its line breaks.
func htmlText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// sectionText is what the layout engine measures for a slide frame.
func sectionText(section generator.Section) string {
	switch section.Type {
	case generator.SectionTextFrame:
		return section.Content
	case generator.SectionStickyNotes:
		return strings.Join(section.Items, " ")
	case generator.SectionCodeBlock:
		return section.Code
	case generator.SectionCodeExamples:
		return section.BeforeCode + " " + section.AfterCode
	}
	return ""
}
