package whiteboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
	"strconv"
)

// Frame is a titled container region.
type Frame struct {
	Title     string
	FillColor string
	Position  Position
	Geometry  Geometry
}

// StickyNote defaults to a light yellow square.
type StickyNote struct {
	Content  string
	Color    string
	Position Position
}

// Text is a free text box. Content may hold simple HTML.
type Text struct {
	Content  string
	FontSize int
	Position Position
	Width    float64
}

// Shape is a rectangle-like item whose content is rendered as HTML.
type Shape struct {
	Content  string
	Kind     string
	Style    map[string]string
	Position Position
	Geometry Geometry
}

// Image uploads PNG bytes as a board image.
type Image struct {
	PNG      []byte
	Title    string
	Position Position
	Width    float64
}

func (c *Client) CreateFrame(ctx context.Context, boardID string, f Frame) (Item, error) {
	fill := f.FillColor
	if fill == "" {
		fill = "transparent"
	}
	body := map[string]any{
		"data": map[string]string{
			"title":  f.Title,
			"format": "custom",
			"type":   "freeform",
		},
		"style":    map[string]string{"fillColor": fill},
		"position": f.Position,
		"geometry": f.Geometry,
	}
	var item Item
	err := c.doJSON(ctx, http.MethodPost, "create_frame", c.itemPath(boardID, "frames"), body, &item)
	return item, err
}

func (c *Client) CreateStickyNote(ctx context.Context, boardID string, n StickyNote) (Item, error) {
	color := n.Color
	if color == "" {
		color = "light_yellow"
	}
	body := map[string]any{
		"data":     map[string]string{"content": n.Content, "shape": "square"},
		"style":    map[string]string{"fillColor": color},
		"position": n.Position,
	}
	var item Item
	err := c.doJSON(ctx, http.MethodPost, "create_sticky_note", c.itemPath(boardID, "sticky_notes"), body, &item)
	return item, err
}

func (c *Client) CreateText(ctx context.Context, boardID string, t Text) (Item, error) {
	size := t.FontSize
	if size <= 0 {
		size = 14
	}
	body := map[string]any{
		"data": map[string]string{"content": t.Content},
		"style": map[string]string{
			"fontSize":  strconv.Itoa(size),
			"textAlign": "left",
		},
		"position": t.Position,
	}
	if t.Width > 0 {
		body["geometry"] = Geometry{Width: t.Width}
	}
	var item Item
	err := c.doJSON(ctx, http.MethodPost, "create_text", c.itemPath(boardID, "texts"), body, &item)
	return item, err
}

func (c *Client) CreateShape(ctx context.Context, boardID string, s Shape) (Item, error) {
	kind := s.Kind
	if kind == "" {
		kind = "rectangle"
	}
	body := map[string]any{
		"data":     map[string]string{"content": s.Content, "shape": kind},
		"position": s.Position,
		"geometry": s.Geometry,
	}
	if len(s.Style) > 0 {
		body["style"] = s.Style
	}
	var item Item
	err := c.doJSON(ctx, http.MethodPost, "create_shape", c.itemPath(boardID, "shapes"), body, &item)
	return item, err
}

// CodeBlock builds a dark monospace rectangle holding code. The code is
// HTML-escaped so it shows literally.
func CodeBlock(code string, pos Position, geom Geometry) Shape {
	content := `<pre style="font-family: 'Courier New', Consolas, monospace; background-color: #1e1e1e; ` +
		`color: #d4d4d4; padding: 16px; margin: 0; white-space: pre-wrap; line-height: 1.4;">` +
		html.EscapeString(code) + `</pre>`
	return Shape{
		Content: content,
		Kind:    "rectangle",
		Style: map[string]string{
			"fillColor":         "#1e1e1e",
			"fillOpacity":       "1.0",
			"borderColor":       "#3c3c3c",
			"borderWidth":       "1",
			"borderOpacity":     "1.0",
			"color":             "#d4d4d4",
			"fontFamily":        "open_sans",
			"fontSize":          "12",
			"textAlign":         "left",
			"textAlignVertical": "top",
		},
		Position: pos,
		Geometry: geom,
	}
}

// CreateImage uploads img as multipart form data: a "resource" file part and
// a "data" part carrying title and placement.
func (c *Client) CreateImage(ctx context.Context, boardID string, img Image) (Item, error) {
	meta := map[string]any{
		"title":    img.Title,
		"position": img.Position,
	}
	if img.Width > 0 {
		meta["geometry"] = Geometry{Width: img.Width}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Item{}, fmt.Errorf("encode image metadata: %w", err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("data", string(metaJSON)); err != nil {
		return Item{}, fmt.Errorf("write image metadata: %w", err)
	}
	part, err := form.CreateFormFile("resource", "code.png")
	if err != nil {
		return Item{}, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(img.PNG); err != nil {
		return Item{}, fmt.Errorf("write image part: %w", err)
	}
	if err := form.Close(); err != nil {
		return Item{}, fmt.Errorf("close image form: %w", err)
	}

	var item Item
	err = c.do(ctx, http.MethodPost, "create_image", c.itemPath(boardID, "images"), &buf, form.FormDataContentType(), &item)
	return item, err
}
