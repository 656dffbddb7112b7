package engine

import (
	"strings"
	"testing"
)

const graphvizSample = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
<g id="graph0" class="graph">
<polygon fill="white" stroke="none" points="-4,4 -4,-112 58,-112 58,4 -4,4"/>
<g id="node1" class="node"><a xlink:href="https://example.com" onclick="alert(1)">
<ellipse fill="none" stroke="black" cx="27" cy="-90" rx="27" ry="18"/>
<text text-anchor="middle" x="27" y="-86.3">A</text>
</a></g>
<script>alert(2)</script>
</g>
</svg>`

func TestNormalizeSVG(t *testing.T) {
	out, w, h := normalizeSVG([]byte(graphvizSample), "diagram-1")

	if w != 62 || h != 116 {
		t.Errorf("size = %vx%v, want 62x116", w, h)
	}
	s := string(out)
	if !strings.Contains(s, `id="diagram-1"`) {
		t.Error("normalized root missing id")
	}
	if !strings.Contains(s, `viewBox="0 0 62.00 116.00"`) {
		t.Error("normalized root missing zero-origin viewBox")
	}
	if !strings.Contains(s, `xmlns:xlink=`) {
		t.Error("normalized root must keep the xlink namespace")
	}
	if strings.Contains(s, "62pt") {
		t.Error("point-based width should be replaced")
	}
	if !strings.HasPrefix(s, "<?xml") {
		t.Error("content before the root element should be preserved")
	}
}

func TestNormalizeSVGNoViewBox(t *testing.T) {
	in := []byte(`<svg><g/></svg>`)
	out, w, h := normalizeSVG(in, "x")
	if string(out) != string(in) || w != 0 || h != 0 {
		t.Errorf("normalizeSVG without viewBox should be a no-op, got %q %vx%v", out, w, h)
	}
}

func TestInjectThemeStylesheet(t *testing.T) {
	theme := Config{Theme: Theme{Base: PaletteForest}}.WithDefaults().Theme
	out := string(injectAfterRoot([]byte(graphvizSample), themeStylesheet("d1", theme)))

	styleAt := strings.Index(out, "<style>")
	rootAt := strings.Index(out, "<svg")
	if styleAt < rootAt || rootAt < 0 {
		t.Fatal("stylesheet should follow the root element")
	}
	if !strings.Contains(out, "#d1 .node") {
		t.Error("stylesheet rules should be scoped to the diagram id")
	}
	if !strings.Contains(out, theme.Line) {
		t.Error("stylesheet missing line color")
	}
}

func TestStripInteractive(t *testing.T) {
	out := string(stripInteractive([]byte(graphvizSample)))

	for _, banned := range []string{"<script", "onclick", "<a ", "</a>", "xlink:href=\"https"} {
		if strings.Contains(out, banned) {
			t.Errorf("stripped SVG still contains %q", banned)
		}
	}
	if !strings.Contains(out, "<g>") {
		t.Error("anchors should be replaced by groups")
	}
	if !strings.Contains(out, "<ellipse") {
		t.Error("shapes inside anchors must survive")
	}
}
