// Package config assembles the runtime configuration seen by the
// scanner. Layering, in precedence order: built-in defaults, a composed
// profile, the project configuration file, CLI overrides. The merged
// Config is constructed once and stays immutable for the scan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	ktoml "github.com/knadh/koanf/parsers/toml/v2"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/skew202/antislop/pkg/lang"
	"github.com/skew202/antislop/pkg/pattern"
	"github.com/skew202/antislop/pkg/profile"
)

// ConfigFiles are the project configuration names, in search order.
var ConfigFiles = []string{"antislop.toml", ".antislop.toml", ".antislop"}

// DefaultMaxFileSizeKB bounds scanned file size when the config doesn't.
const DefaultMaxFileSizeKB = 1024

// SuppressRule silences findings by path, optionally narrowed to
// specific pattern ids.
type SuppressRule struct {
	// Path is a doublestar glob matched against the reported file path.
	Path string `koanf:"path" toml:"path"`
	// IDs narrows suppression to the listed pattern ids; empty
	// suppresses every finding under Path.
	IDs []string `koanf:"ids" toml:"ids,omitempty"`
}

// Config is the merged runtime configuration.
type Config struct {
	FileExtensions []string             `koanf:"file_extensions" toml:"file_extensions"`
	MaxFileSizeKB  int64                `koanf:"max_file_size_kb" toml:"max_file_size_kb"`
	Exclude        []string             `koanf:"exclude" toml:"exclude"`
	Patterns       []pattern.Definition `koanf:"patterns" toml:"patterns"`
	Suppress       []SuppressRule       `koanf:"suppress" toml:"suppress,omitempty"`

	// Category filters, set from --only / --disable. CLI-only.
	Only    []pattern.Category `koanf:"-" toml:"-"`
	Disable []pattern.Category `koanf:"-" toml:"-"`

	// profilePatterns sit between built-ins and project patterns.
	profilePatterns []pattern.Definition
}

// knownKeys are the accepted top-level configuration keys. Anything
// else is warned about but tolerated, for forward compatibility.
var knownKeys = map[string]bool{
	"file_extensions":  true,
	"max_file_size_kb": true,
	"exclude":          true,
	"patterns":         true,
	"suppress":         true,
	// Profile files share the format; these keys are theirs.
	"metadata": true,
	"extends":  true,
}

// Default returns the built-in configuration: every known language
// extension, the default size bound, no exclusions beyond the walker's
// ignore defaults.
func Default() *Config {
	exts := make([]string, 0, len(lang.Extensions))
	for ext := range lang.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	return &Config{
		FileExtensions: exts,
		MaxFileSizeKB:  DefaultMaxFileSizeKB,
	}
}

// Discover finds the project configuration file in dir, honoring the
// ConfigFiles search order.
func Discover(dir string) (string, bool) {
	for _, name := range ConfigFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadFile merges a project configuration file into the receiver.
// Malformed TOML is fatal; unknown top-level keys only warn.
func (c *Config) LoadFile(path string, log hclog.Logger) error {
	k := koanf.New(".")
	if err := k.Load(kfile.Provider(path), ktoml.Parser()); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	for _, key := range topLevelKeys(k) {
		if !knownKeys[key] {
			log.Warn("unknown configuration key", "file", path, "key", key)
		}
	}

	var file Config
	if err := k.Unmarshal("", &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if len(file.FileExtensions) > 0 {
		c.FileExtensions = file.FileExtensions
	}
	if file.MaxFileSizeKB > 0 {
		c.MaxFileSizeKB = file.MaxFileSizeKB
	}
	c.Exclude = append(c.Exclude, file.Exclude...)
	c.Patterns = append(c.Patterns, file.Patterns...)
	c.Suppress = append(c.Suppress, file.Suppress...)
	return nil
}

// ApplyProfile layers a composed profile under the project
// configuration: profile patterns override built-ins but lose to
// project patterns with the same id.
func (c *Config) ApplyProfile(p *profile.Profile) {
	c.profilePatterns = append(c.profilePatterns, p.Patterns...)
	if len(p.FileExtensions) > 0 {
		c.FileExtensions = p.FileExtensions
	}
	c.Exclude = append(c.Exclude, p.Exclude...)
}

// CompileRegistry merges the pattern layers, compiles them, and applies
// the category filters. Compilation errors (bad regex, severity, or
// category) are fatal to the scan.
func (c *Config) CompileRegistry() (*pattern.Registry, error) {
	defaults, err := pattern.Defaults()
	if err != nil {
		return nil, err
	}
	reg, err := pattern.Compile(defaults, c.profilePatterns, c.Patterns)
	if err != nil {
		return nil, err
	}
	return reg.Filter(c.Only, c.Disable), nil
}

// ParseCategories validates a comma-separated category filter list.
func ParseCategories(names []string) ([]pattern.Category, error) {
	var out []pattern.Category
	for _, name := range names {
		if name == "" {
			continue
		}
		cat, err := pattern.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

// Marshal renders the effective configuration — merged pattern layers
// included — as TOML that LoadFile accepts back, yielding an equivalent
// ruleset.
func (c *Config) Marshal() ([]byte, error) {
	defaults, err := pattern.Defaults()
	if err != nil {
		return nil, err
	}

	merged := make([]pattern.Definition, 0, len(defaults)+len(c.profilePatterns)+len(c.Patterns))
	index := make(map[string]int)
	for _, layer := range [][]pattern.Definition{defaults, c.profilePatterns, c.Patterns} {
		for _, d := range layer {
			if at, ok := index[d.EffectiveID()]; ok {
				merged[at] = d
				continue
			}
			index[d.EffectiveID()] = len(merged)
			merged = append(merged, d)
		}
	}

	out := struct {
		FileExtensions []string             `toml:"file_extensions"`
		MaxFileSizeKB  int64                `toml:"max_file_size_kb"`
		Exclude        []string             `toml:"exclude"`
		Suppress       []SuppressRule       `toml:"suppress,omitempty"`
		Patterns       []pattern.Definition `toml:"patterns"`
	}{c.FileExtensions, c.MaxFileSizeKB, c.Exclude, c.Suppress, merged}

	return toml.Marshal(out)
}

// MaxFileSize returns the size bound in bytes.
func (c *Config) MaxFileSize() int64 {
	return c.MaxFileSizeKB * 1024
}

func topLevelKeys(k *koanf.Koanf) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, key := range k.Keys() {
		top := key
		if i := strings.IndexByte(key, '.'); i >= 0 {
			top = key[:i]
		}
		if !seen[top] {
			seen[top] = true
			keys = append(keys, top)
		}
	}
	sort.Strings(keys)
	return keys
}
