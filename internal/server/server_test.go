package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramview/pkg/engine"
	"github.com/matzehuels/diagramview/pkg/errors"
)

type stubEngine struct{}

func (stubEngine) Name() string { return "stub" }
func (stubEngine) Close() error { return nil }

func (stubEngine) Render(_ context.Context, id, markup string) (*engine.Rendered, error) {
	if !strings.Contains(markup, "->") || strings.HasSuffix(strings.TrimSpace(markup), "-") {
		return nil, errors.New(errors.ErrCodeEngineRender, "syntax error near end of input")
	}
	return &engine.Rendered{SVG: []byte(`<svg id="` + id + `"></svg>`), Width: 10, Height: 20}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(stubEngine{}, log.New(io.Discard), 0).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRenderSuccess(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/render", "digraph { A -> B }")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	id := resp.Header.Get("X-Diagram-Id")
	if !strings.HasPrefix(id, "diagram-") {
		t.Errorf("X-Diagram-Id = %q, want diagram- prefix", id)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), id) {
		t.Errorf("body = %q, want artifact for %s", body, id)
	}
}

func TestRenderSuccessJSON(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/render?format=json", "digraph { A -> B }")

	var got artifactResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Width != 10 || got.Height != 20 || got.SVG == "" {
		t.Errorf("response = %+v", got)
	}
}

func TestRenderFailureReturnsSource(t *testing.T) {
	srv := newTestServer(t)
	const markup = "digraph {\n  A ->\n}-"
	resp := post(t, srv.URL+"/render", markup)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var got diagnosticResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != markup {
		t.Errorf("source = %q, want exact markup %q", got.Source, markup)
	}
	if got.Code != errors.ErrCodeEngineRender {
		t.Errorf("code = %q, want %q", got.Code, errors.ErrCodeEngineRender)
	}
	if !strings.Contains(got.Message, "syntax error") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestRenderEmpty(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/render", "  \n")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestRenderTooLarge(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/render", strings.Repeat("a", errors.MaxMarkupSize+10))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRenderMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/render")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
