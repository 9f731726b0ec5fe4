package canvas

import (
	"context"
	"errors"
	"strings"
	"testing"

	"learninghour/internal/codeimage"
	"learninghour/internal/errdefs"
	"learninghour/internal/generator"
	"learninghour/internal/whiteboard"
)

type call struct {
	kind    string
	content string
	pos     whiteboard.Position
}

// recordingBoard records every item call in order.
type recordingBoard struct {
	calls    []call
	board    whiteboard.Board
	failKind string
	getCalls int
}

func (f *recordingBoard) record(kind, content string, pos whiteboard.Position) (whiteboard.Item, error) {
	if kind == f.failKind {
		return whiteboard.Item{}, errdefs.Upstream("miro create_"+kind, errors.New("status 500"))
	}
	f.calls = append(f.calls, call{kind: kind, content: content, pos: pos})
	return whiteboard.Item{ID: kind + "-" + string(rune('a'+len(f.calls)-1)), Type: kind}, nil
}

func (f *recordingBoard) CreateBoard(_ context.Context, name, description string) (whiteboard.Board, error) {
	f.calls = append(f.calls, call{kind: "board", content: name + "|" + description})
	return f.board, nil
}

func (f *recordingBoard) GetBoard(context.Context, string) (whiteboard.Board, error) {
	f.getCalls++
	return whiteboard.Board{ID: f.board.ID, ViewLink: "https://miro.com/app/board/fetched"}, nil
}

func (f *recordingBoard) CreateFrame(_ context.Context, _ string, fr whiteboard.Frame) (whiteboard.Item, error) {
	return f.record("frame", fr.Title, fr.Position)
}

func (f *recordingBoard) CreateStickyNote(_ context.Context, _ string, n whiteboard.StickyNote) (whiteboard.Item, error) {
	return f.record("sticky", n.Content, n.Position)
}

func (f *recordingBoard) CreateText(_ context.Context, _ string, t whiteboard.Text) (whiteboard.Item, error) {
	return f.record("text", t.Content, t.Position)
}

func (f *recordingBoard) CreateShape(_ context.Context, _ string, s whiteboard.Shape) (whiteboard.Item, error) {
	return f.record("shape", s.Content, s.Position)
}

func (f *recordingBoard) CreateImage(_ context.Context, _ string, img whiteboard.Image) (whiteboard.Item, error) {
	return f.record("image", img.Title, img.Position)
}

func (f *recordingBoard) kinds(kind string) []call {
	var out []call
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type stubImages struct {
	err  error
	seen []codeimage.Options
}

func (s *stubImages) Generate(_ context.Context, opts codeimage.Options) (*codeimage.CodeImage, error) {
	s.seen = append(s.seen, opts)
	if s.err != nil {
		return nil, s.err
	}
	return &codeimage.CodeImage{PNG: []byte("png"), Width: 800, Height: 400}, nil
}

func session(style string) generator.SessionContent {
	return generator.SessionContent{
		Topic:           "Feature Envy",
		SessionOverview: "Move behaviour next to its data.",
		MiroContent: generator.MiroContent{
			BoardTitle: "Learning Hour: Feature Envy",
			Style:      style,
			Sections: []generator.Section{
				{Title: "Welcome & Session Overview", Type: generator.SectionTextFrame, Content: "Hello <team>\nwelcome"},
				{Title: "Learning Objectives", Type: generator.SectionStickyNotes, Color: "light_blue", Items: []string{"one", "two", "three", "four"}},
				{Title: "Code Exercise", Type: generator.SectionCodeExamples, Language: "go", BeforeCode: "```go\na.b().c()\n```", AfterCode: "a.total()"},
				{Title: "Solution", Type: generator.SectionCodeBlock, Code: "func total() {}"},
			},
		},
	}
}

func TestBuildSlides(t *testing.T) {
	t.Parallel()

	board := &recordingBoard{board: whiteboard.Board{ID: "b1", ViewLink: "https://miro.com/app/board/b1"}}
	got, err := New(board, nil, nil).Build(context.Background(), session(""))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if board.calls[0].content != "Learning Hour: Feature Envy|Move behaviour next to its data." {
		t.Fatalf("board call=%+v", board.calls[0])
	}
	if got.Style != generator.StyleSlide || got.BoardID != "b1" || got.ViewLink != "https://miro.com/app/board/b1" {
		t.Fatalf("layout=%+v", got)
	}
	if board.getCalls != 0 {
		t.Fatalf("GetBoard called %d times, want 0", board.getCalls)
	}
	if got.ItemCount != 18 || len(board.calls)-1 != 18 {
		t.Fatalf("ItemCount=%d calls=%d, want 18", got.ItemCount, len(board.calls)-1)
	}

	frames := board.kinds("frame")
	for i, want := range []float64{0, 1000, 2000, 3000} {
		if frames[i].pos.X != want || frames[i].pos.Y != 0 {
			t.Fatalf("frame %d at %+v, want x=%v", i, frames[i].pos, want)
		}
	}

	stickies := board.kinds("sticky")
	if len(stickies) != 4 || stickies[0].content != "• one" {
		t.Fatalf("stickies=%+v", stickies)
	}
	if stickies[0].pos != (whiteboard.Position{X: 800, Y: -30}) || stickies[3].pos != (whiteboard.Position{X: 800, Y: 110}) {
		t.Fatalf("sticky grid positions=%+v, %+v", stickies[0].pos, stickies[3].pos)
	}
	if len(got.Sections.Objectives) != 4 || got.Sections.Overview == nil {
		t.Fatalf("sections=%+v", got.Sections)
	}
	if len(got.Sections.Takeaways) != 0 || got.Sections.Takeaways == nil {
		t.Fatalf("Takeaways should be empty and non-nil")
	}

	shapes := board.kinds("shape")
	if len(shapes) != 3 {
		t.Fatalf("shapes=%d, want 3 code blocks", len(shapes))
	}
	if strings.Contains(shapes[0].content, "```") || !strings.Contains(shapes[0].content, "a.b().c()") {
		t.Fatalf("before code not cleaned: %s", shapes[0].content)
	}

	var overview string
	for _, c := range board.kinds("text") {
		if strings.HasPrefix(c.content, "<p>") {
			overview = c.content
		}
	}
	if overview != "<p>Hello &lt;team&gt;<br>welcome</p>" {
		t.Fatalf("overview text=%q", overview)
	}
}

func TestBuildColumn(t *testing.T) {
	t.Parallel()

	board := &recordingBoard{board: whiteboard.Board{ID: "b2"}}
	got, err := New(board, nil, nil).Build(context.Background(), session(generator.StyleVertical))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if board.getCalls != 1 || got.ViewLink != "https://miro.com/app/board/fetched" {
		t.Fatalf("view link fallback: gets=%d link=%q", board.getCalls, got.ViewLink)
	}
	if len(board.kinds("frame")) != 0 {
		t.Fatalf("column layout should not create frames")
	}

	var titleYs []float64
	for _, c := range board.kinds("text") {
		if strings.HasPrefix(c.content, "<h3>") {
			if c.pos.X != -500 {
				t.Fatalf("title x=%v, want -500", c.pos.X)
			}
			titleYs = append(titleYs, c.pos.Y)
		}
	}
	want := []float64{-400, 100, 540, 1240}
	if len(titleYs) != len(want) {
		t.Fatalf("titles=%v, want %v", titleYs, want)
	}
	for i := range want {
		if titleYs[i] != want[i] {
			t.Fatalf("title ys=%v, want %v", titleYs, want)
		}
	}
}

func TestBuildUsesCodeImagesWhenAvailable(t *testing.T) {
	t.Parallel()

	board := &recordingBoard{board: whiteboard.Board{ID: "b3", ViewLink: "v"}}
	images := &stubImages{}
	if _, err := New(board, images, nil).Build(context.Background(), session(generator.StyleSlide)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n := len(board.kinds("image")); n != 3 {
		t.Fatalf("images=%d, want 3", n)
	}
	if n := len(board.kinds("shape")); n != 0 {
		t.Fatalf("shapes=%d, want 0", n)
	}
	if images.seen[0].Code != "a.b().c()" || images.seen[0].Language != "go" || !images.seen[0].DarkMode {
		t.Fatalf("image options=%+v", images.seen[0])
	}

	failing := &recordingBoard{board: whiteboard.Board{ID: "b4", ViewLink: "v"}}
	if _, err := New(failing, &stubImages{err: errors.New("no font")}, nil).Build(context.Background(), session("")); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n := len(failing.kinds("shape")); n != 3 {
		t.Fatalf("fallback shapes=%d, want 3", n)
	}
}

func TestBuildStopsOnFailure(t *testing.T) {
	t.Parallel()

	board := &recordingBoard{board: whiteboard.Board{ID: "b5", ViewLink: "v"}, failKind: "sticky"}
	_, err := New(board, nil, nil).Build(context.Background(), session(""))
	if !errors.Is(err, errdefs.ErrUpstream) {
		t.Fatalf("Build() error = %v, want ErrUpstream", err)
	}
	for _, want := range []string{"b5", `"Learning Objectives"`, "sticky note 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %s", err, want)
		}
	}
	if n := len(board.kinds("frame")); n != 2 {
		t.Fatalf("frames=%d, want 2 (build stopped in second section)", n)
	}
}
