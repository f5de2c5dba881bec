package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileNames are the project config files Load looks for, in order.
var FileNames = []string{"intelliparse.yml", "intelliparse.yaml"}

// ProjectConfig holds project-level settings loaded from intelliparse.yml.
type ProjectConfig struct {
	Language       string   `yaml:"language,omitempty"`
	Roots          []string `yaml:"roots,omitempty"`
	ExcludeDirs    []string `yaml:"excludeDirs,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
	GrammarDirs    []string `yaml:"grammarDirs,omitempty"`
	Concurrency    int      `yaml:"concurrency,omitempty"`
	TolerateErrors bool     `yaml:"tolerateErrors,omitempty"`
	Watch          bool     `yaml:"watch,omitempty"`
	DebounceMs     int      `yaml:"debounceMs,omitempty"`
	Index          string   `yaml:"index,omitempty"`

	// Dir is the directory the config was loaded from. Relative roots and
	// grammar dirs are resolved against it.
	Dir string `yaml:"-"`
}

// Load attempts to read intelliparse.yml or intelliparse.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		cfg.Dir = dir
		return &cfg, nil
	}
	return &ProjectConfig{Dir: dir}, nil
}

// Debounce returns the watcher debounce, or zero when unset.
func (c *ProjectConfig) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return 0
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ResolvedRoots returns Roots with relative entries joined onto Dir.
func (c *ProjectConfig) ResolvedRoots() []string {
	return c.resolve(c.Roots)
}

// ResolvedGrammarDirs returns GrammarDirs with relative entries joined onto Dir.
func (c *ProjectConfig) ResolvedGrammarDirs() []string {
	return c.resolve(c.GrammarDirs)
}

func (c *ProjectConfig) resolve(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || c.Dir == "" {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(c.Dir, p)
	}
	return out
}
