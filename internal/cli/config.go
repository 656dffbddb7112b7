package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramview/pkg/engine"
)

// Config is the on-disk configuration.
//
//	[engine]
//	name = "graphviz"
//	timeout = "30s"
//	security = "strict"
//
//	[theme]
//	base = "dark"
//	primary = "#334455"
type Config struct {
	Engine  EngineSection         `toml:"engine"`
	Theme   engine.Theme          `toml:"theme"`
	Mermaid engine.MermaidOptions `toml:"mermaid"`
	Server  ServerSection         `toml:"server"`
	Viewer  ViewerSection         `toml:"viewer"`
}

// EngineSection selects and tunes the render engine.
type EngineSection struct {
	Name     string          `toml:"name"`
	Timeout  time.Duration   `toml:"timeout"`
	Security engine.Security `toml:"security"`
	Preview  bool            `toml:"preview"`
}

// ServerSection configures "diagramview serve".
type ServerSection struct {
	Addr string `toml:"addr"`
}

// ViewerSection configures "diagramview view".
type ViewerSection struct {
	WatchInterval time.Duration `toml:"watch_interval"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	ec := engine.DefaultConfig()
	return Config{
		Engine: EngineSection{
			Name:     engine.NameGraphviz,
			Timeout:  30 * time.Second,
			Security: ec.Security,
			Preview:  ec.Preview,
		},
		Theme:   ec.Theme,
		Mermaid: engine.MermaidOptions{ScriptURL: engine.DefaultMermaidScript},
		Server:  ServerSection{Addr: "127.0.0.1:8080"},
		Viewer:  ViewerSection{WatchInterval: time.Second},
	}
}

// EngineConfig returns the engine configuration with defaults applied.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		Theme:    c.Theme,
		Security: c.Engine.Security,
		Preview:  c.Engine.Preview,
	}.WithDefaults()
}

// Validate checks the configuration as a whole.
func (c Config) Validate() error {
	switch c.Engine.Name {
	case engine.NameGraphviz, engine.NameMermaid:
	default:
		return fmt.Errorf("engine.name: unknown engine %q", c.Engine.Name)
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout: must not be negative")
	}
	if c.Viewer.WatchInterval <= 0 {
		return fmt.Errorf("viewer.watch_interval: must be positive")
	}
	return c.EngineConfig().Validate()
}

// configPath returns the default config file location using XDG standard
// (~/.config/diagramview/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path over the defaults. An empty path means the default
// location, where a missing file is not an error.
func loadConfig(path string) (Config, []string, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil, nil
		}
		return Config{}, nil, fmt.Errorf("load config %s: %w", path, err)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, unknown, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, unknown, nil
}

// loadConfig loads the file named by --config and logs unknown keys.
func (c *CLI) loadConfig() (Config, error) {
	cfg, unknown, err := loadConfig(c.configPath)
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	return cfg, err
}

// writeConfig encodes cfg as TOML.
func writeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// engineFlags holds command-line overrides for the engine section.
type engineFlags struct {
	name     string
	theme    string
	security string
	timeout  time.Duration
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "engine", "e", "", "render engine: graphviz or mermaid")
	cmd.Flags().StringVar(&f.theme, "theme", "", "base palette: default, dark, neutral, forest")
	cmd.Flags().StringVar(&f.security, "security", "", "security level: strict or loose")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "render timeout (0 keeps the configured value)")
}

// apply overrides cfg with the flags that were set and revalidates.
func (f *engineFlags) apply(cfg Config) (Config, error) {
	if f.name != "" {
		cfg.Engine.Name = f.name
	}
	if f.theme != "" {
		cfg.Theme.Base = f.theme
	}
	if f.security != "" {
		cfg.Engine.Security = engine.Security(f.security)
	}
	if f.timeout > 0 {
		cfg.Engine.Timeout = f.timeout
	}
	return cfg, cfg.Validate()
}

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	var flags engineFlags
	var showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after merging defaults, the config file and flags, in TOML form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := c.configPath
				if path == "" {
					p, err := configPath()
					if err != nil {
						return err
					}
					path = p
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg, err = flags.apply(cfg); err != nil {
				return err
			}
			cfg.Theme = cfg.EngineConfig().Theme
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file location instead")
	return cmd
}
