package sink

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/feed"
)

func testSnapshot(t *testing.T) Snapshot {
	t.Helper()
	payloads := []feed.Item{
		{ID: "a", Title: "Alpha", Tags: []string{"x"}, Body: "first"},
		{ID: "b", Title: "Bravo <&>", Body: "second"},
		{ID: "c", Title: "Charlie"},
		{ID: "d", Title: "Delta"},
	}
	heights := map[string]int{"a": 100, "b": 60, "c": 80, "d": 40}
	items := masonry.Wrap(payloads)
	l := masonry.New(2, 10, masonry.ColumnWidth(210, 2, 10))
	measure := masonry.MeasureFunc[feed.Item](func(_ context.Context, it feed.Item, _ int) (int, error) {
		return heights[it.ID], nil
	})
	if _, err := masonry.Batch(context.Background(), l, items, measure, masonry.Options{}); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	return NewSnapshot(l, 210, items)
}

func TestNewSnapshot(t *testing.T) {
	s := testSnapshot(t)

	if s.Columns != 2 || s.ColumnWidth != 100 || s.Gap != 10 {
		t.Errorf("snapshot = %+v, want 2 columns of width 100, gap 10", s)
	}
	// a -> col 0 (0..100), b -> col 1 (0..60), c -> col 1 (70..150), d -> col 0 (110..150)
	want := []struct{ col, x, y int }{{0, 0, 0}, {1, 110, 0}, {1, 110, 70}, {0, 0, 110}}
	for i, w := range want {
		c := s.Cards[i]
		if c.Column != w.col || c.X != w.x || c.Y != w.y {
			t.Errorf("Cards[%d] = col %d (%d,%d), want col %d (%d,%d)", i, c.Column, c.X, c.Y, w.col, w.x, w.y)
		}
	}
	if s.Height != 150 {
		t.Errorf("Height = %d, want 150", s.Height)
	}
}

func TestRenderJSON(t *testing.T) {
	s := testSnapshot(t)

	data, err := RenderJSON(s, WithJSONSource("items.json"))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out.Source != "items.json" || out.Height != 150 || len(out.Cards) != 4 {
		t.Errorf("RenderJSON() = %+v", out)
	}
	if out.Cards[0].Body != "" {
		t.Error("bodies should be omitted by default")
	}

	data, _ = RenderJSON(s, WithJSONBodies(), WithJSONIndent())
	if !strings.Contains(string(data), `"body": "first"`) {
		t.Errorf("WithJSONBodies() output missing body:\n%s", data)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testSnapshot(t)))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("RenderSVG() is not a complete svg document")
	}
	if got := strings.Count(svg, `class="card"`); got != 4 {
		t.Errorf("card groups = %d, want 4", got)
	}
	if !strings.Contains(svg, "Bravo &lt;&amp;&gt;") {
		t.Error("titles should be XML escaped")
	}
	if !strings.Contains(svg, `viewBox="0 0 242 182"`) {
		t.Error("viewBox should include the default margin")
	}
}

func TestRenderSVGViewport(t *testing.T) {
	s := testSnapshot(t)
	svg := string(RenderSVG(s, WithViewport(120, 100), WithMargin(0)))

	if !strings.Contains(svg, `class="viewport"`) {
		t.Error("viewport band missing")
	}
	// Visible by the 10% ratio: c (70..150) and d (110..150). a (0..100) is outside.
	for _, id := range []string{"card-2", "card-3"} {
		if !strings.Contains(svg, `class="card visible" id="`+id+`"`) {
			t.Errorf("%s should be marked visible", id)
		}
	}
	if strings.Contains(svg, `class="card visible" id="card-0"`) {
		t.Error("card-0 should not be marked visible")
	}
}

func TestRenderSVGFailedCard(t *testing.T) {
	s := testSnapshot(t)
	s.Cards[1].Failed = true
	svg := string(RenderSVG(s, WithTheme(DarkTheme)))
	if !strings.Contains(svg, `class="card failed" id="card-1"`) {
		t.Error("failed card should be marked")
	}
	if !strings.Contains(svg, DarkTheme.Background) {
		t.Error("theme background missing")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 200, "short"},
		{"a much longer title here", 60, "a much.."},
		{"tiny", 10, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width, 11); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
