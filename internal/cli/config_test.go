package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/diagramview/pkg/engine"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", appName, "config.toml"); got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join(".config", appName, "config.toml")) {
		t.Errorf("configPath() = %q, want ~/.config/%s/config.toml", got, appName)
	}
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, unknown, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig() should fail for a missing --config file")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[engine]
name = "mermaid"
timeout = "5s"
security = "strict"

[theme]
base = "dark"
primary = "#334455"

[mermaid]
control_url = "ws://127.0.0.1:9222/devtools/browser/abc"

[server]
addr = ":9000"

[viewer]
watch_interval = "250ms"
colour = "red"
`)

	cfg, unknown, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Engine.Name != engine.NameMermaid {
		t.Errorf("engine.name = %q", cfg.Engine.Name)
	}
	if cfg.Engine.Timeout != 5*time.Second {
		t.Errorf("engine.timeout = %v", cfg.Engine.Timeout)
	}
	if cfg.Engine.Security != engine.SecurityStrict {
		t.Errorf("engine.security = %q", cfg.Engine.Security)
	}
	if !cfg.Engine.Preview {
		t.Error("engine.preview should keep its default")
	}
	if cfg.Mermaid.ScriptURL != engine.DefaultMermaidScript {
		t.Errorf("mermaid.script_url = %q, want default", cfg.Mermaid.ScriptURL)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Viewer.WatchInterval != 250*time.Millisecond {
		t.Errorf("viewer.watch_interval = %v", cfg.Viewer.WatchInterval)
	}

	theme := cfg.EngineConfig().Theme
	if theme.Primary != "#334455" {
		t.Errorf("theme.primary = %q", theme.Primary)
	}
	if theme.Background != "#111111" {
		t.Errorf("theme.background = %q, want dark palette fill", theme.Background)
	}

	if len(unknown) != 1 || unknown[0] != "viewer.colour" {
		t.Errorf("unknown = %v, want [viewer.colour]", unknown)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown engine", "[engine]\nname = \"plantuml\"\n"},
		{"unknown palette", "[theme]\nbase = \"solarized\"\n"},
		{"bad color", "[theme]\nline = \"#12345\"\n"},
		{"bad security", "[engine]\nsecurity = \"paranoid\"\n"},
		{"negative timeout", "[engine]\ntimeout = \"-1s\"\n"},
		{"syntax error", "[engine\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.content)
			if _, _, err := loadConfig(path); err == nil {
				t.Error("loadConfig() should fail")
			}
		})
	}
}

func TestEngineFlagsApply(t *testing.T) {
	f := engineFlags{name: "mermaid", theme: "forest", security: "strict", timeout: time.Second}
	cfg, err := f.apply(DefaultConfig())
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if cfg.Engine.Name != "mermaid" || cfg.Theme.Base != "forest" || cfg.Engine.Security != engine.SecurityStrict || cfg.Engine.Timeout != time.Second {
		t.Errorf("apply() = %+v", cfg)
	}

	bad := engineFlags{theme: "neon"}
	if _, err := bad.apply(DefaultConfig()); err == nil {
		t.Error("apply() should reject an unknown palette")
	}
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeFile(t, dir, filepath.Join(appName, "config.toml"), "[theme]\nbase = \"forest\"\n")

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--engine", "mermaid"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("config command error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`name = "mermaid"`,
		`base = "forest"`,
		`primary = "#CDE498"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %q:\n%s", want, got)
		}
	}
}

func TestConfigCommandPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg-test")

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/etc/xdg-test", appName, "config.toml"); strings.TrimSpace(out.String()) != want {
		t.Errorf("config --path = %q, want %q", out.String(), want)
	}
}
