package sink

import "encoding/json"

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	bodies bool
	source string
	indent bool
}

// WithJSONBodies includes item bodies and image references. Without it
// cards carry only their id, title and tags.
func WithJSONBodies() JSONOption { return func(r *jsonRenderer) { r.bodies = true } }

// WithJSONSource records where the items came from (file path or feed URL).
func WithJSONSource(s string) JSONOption { return func(r *jsonRenderer) { r.source = s } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Source      string     `json:"source,omitempty"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Columns     int        `json:"columns"`
	Gap         int        `json:"gap"`
	ColumnWidth int        `json:"column_width"`
	Cards       []jsonCard `json:"cards"`
}

type jsonCard struct {
	Index  int      `json:"index"`
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags,omitempty"`
	Body   string   `json:"body,omitempty"`
	Image  string   `json:"image,omitempty"`
	Column int      `json:"column"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Failed bool     `json:"failed,omitempty"`
}

// RenderJSON encodes the snapshot geometry.
func RenderJSON(s Snapshot, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Source:      r.source,
		Width:       s.Width,
		Height:      s.Height,
		Columns:     s.Columns,
		Gap:         s.Gap,
		ColumnWidth: s.ColumnWidth,
		Cards:       make([]jsonCard, len(s.Cards)),
	}
	for i, c := range s.Cards {
		jc := jsonCard{
			Index:  c.Index,
			ID:     c.Item.ID,
			Title:  c.Item.Title,
			Tags:   c.Item.Tags,
			Column: c.Column,
			X:      c.X,
			Y:      c.Y,
			Width:  c.W,
			Height: c.H,
			Failed: c.Failed,
		}
		if r.bodies {
			jc.Body = c.Item.Body
			jc.Image = c.Item.Image
		}
		out.Cards[i] = jc
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
