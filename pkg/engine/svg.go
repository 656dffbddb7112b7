package engine

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)

	scriptRe    = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	anchorOpen  = regexp.MustCompile(`(?i)<a\b[^>]*>`)
	anchorClose = regexp.MustCompile(`(?i)</a\s*>`)
	handlerRe   = regexp.MustCompile(`(?i)\son[a-z]+\s*=\s*("[^"]*"|'[^']*')`)
)

// normalizeSVG rewrites the root element so the artifact scales with its
// container, tags it with id, and reports the intrinsic size from the viewBox.
func normalizeSVG(svg []byte, id string) ([]byte, float64, float64) {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg, 0, 0
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg, 0, 0
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" id="%s" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		id, w, h, w, h)

	loc := svgTagRe.FindIndex(svg)
	if loc == nil {
		return svg, w, h
	}
	var out bytes.Buffer
	out.Grow(len(svg) + len(root))
	out.Write(svg[:loc[0]])
	out.WriteString(root)
	out.Write(svg[loc[1]:])
	return out.Bytes(), w, h
}

// themeStylesheet returns a <style> element recoloring Graphviz's default
// black-on-white output. Colors the markup sets explicitly are left alone.
func themeStylesheet(id string, t Theme) string {
	return fmt.Sprintf(`<style>
#%[1]s .graph > polygon[fill="white"] { fill: %[2]s; }
#%[1]s .node polygon[fill="none"], #%[1]s .node ellipse[fill="none"], #%[1]s .node path[fill="none"] { fill: %[3]s; }
#%[1]s .cluster polygon[fill="none"] { fill: %[4]s; }
#%[1]s [stroke="black"] { stroke: %[5]s; }
#%[1]s .edge polygon[fill="black"] { fill: %[5]s; }
#%[1]s text:not([fill]) { fill: %[6]s; }
</style>`, id, t.Background, t.Primary, t.Secondary, t.Line, t.Text)
}

// injectAfterRoot inserts s right after the root <svg> tag.
func injectAfterRoot(svg []byte, s string) []byte {
	loc := svgTagRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	var out bytes.Buffer
	out.Grow(len(svg) + len(s))
	out.Write(svg[:loc[1]])
	out.WriteString(s)
	out.Write(svg[loc[1]:])
	return out.Bytes()
}

// stripInteractive removes scripts, event handlers and hyperlinks.
// Anchors become groups so the element nesting stays balanced.
func stripInteractive(svg []byte) []byte {
	svg = scriptRe.ReplaceAll(svg, nil)
	svg = handlerRe.ReplaceAll(svg, nil)
	svg = anchorOpen.ReplaceAll(svg, []byte("<g>"))
	return anchorClose.ReplaceAll(svg, []byte("</g>"))
}
