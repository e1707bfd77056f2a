package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skew202/antislop/pkg/pattern"
)

// Source identifies where a profile comes from.
type Source struct {
	// Name is a bare profile name resolved through the search dirs.
	Name string
	// Path is a direct file path.
	Path string
	// URL is a remote location, fetched and cached before the scan.
	URL string
}

// ParseSource classifies a --profile argument: URL forms are remote, an
// existing file is a path, anything else is a name.
func ParseSource(input string) Source {
	if strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://") {
		return Source{URL: input}
	}
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		return Source{Path: input}
	}
	return Source{Name: input}
}

// Loader resolves profiles by name, path, or URL, and flattens their
// extends graphs. Resolution order for names: project-local
// .antislop/profiles/, the user config dir, then the cache dir.
type Loader struct {
	ProjectDir string
	UserDir    string
	CacheDir   string
	// Fetcher retrieves remote profiles; nil disables URL sources.
	Fetcher *Fetcher
}

// NewLoader builds a loader rooted at the standard directories.
func NewLoader() *Loader {
	userDir, err := os.UserConfigDir()
	if err != nil {
		userDir = ".config"
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = ".cache"
	}
	cache := filepath.Join(cacheDir, "antislop", "profiles")
	return &Loader{
		ProjectDir: filepath.Join(".antislop", "profiles"),
		UserDir:    filepath.Join(userDir, "antislop", "profiles"),
		CacheDir:   cache,
		Fetcher:    NewFetcher(cache),
	}
}

// Resolve loads the profile for a source and flattens its extends DAG
// into a single pattern list. Extended profiles contribute their
// patterns first, depth-first in declaration order, so the extending
// profile's own patterns override by id. Cycles fail with
// ErrProfileCycle; unknown references surface as errors rather than
// silently shrinking the ruleset.
func (l *Loader) Resolve(src Source) (*Profile, error) {
	visiting := make(map[string]bool)
	return l.resolve(src, visiting)
}

func (l *Loader) resolve(src Source, visiting map[string]bool) (*Profile, error) {
	p, key, err := l.loadOne(src)
	if err != nil {
		return nil, err
	}

	if visiting[key] {
		return nil, fmt.Errorf("%w: %q extends itself transitively", ErrProfileCycle, p.Metadata.Name)
	}
	visiting[key] = true
	defer delete(visiting, key)

	if len(p.Metadata.Extends) == 0 {
		return p, nil
	}

	// Parents flatten first; the child's own patterns win on id clashes.
	var inherited []pattern.Definition
	for _, ref := range p.Metadata.Extends {
		parent, err := l.resolve(ParseSource(ref), visiting)
		if err != nil {
			return nil, fmt.Errorf("profile %q extends %q: %w", p.Metadata.Name, ref, err)
		}
		inherited = mergeByID(inherited, parent.Patterns)
		p.FileExtensions = append(parent.FileExtensions, p.FileExtensions...)
		p.Exclude = append(parent.Exclude, p.Exclude...)
	}

	p.Patterns = mergeByID(inherited, p.Patterns)
	return p, nil
}

// loadOne loads a profile without extends resolution, returning a key
// that identifies it for cycle detection.
func (l *Loader) loadOne(src Source) (*Profile, string, error) {
	switch {
	case src.URL != "":
		if l.Fetcher == nil {
			return nil, "", fmt.Errorf("remote profile %q: no fetcher configured", src.URL)
		}
		p, err := l.Fetcher.Fetch(src.URL)
		if err != nil {
			return nil, "", err
		}
		return p, "url:" + src.URL, nil

	case src.Path != "":
		p, err := Load(src.Path)
		if err != nil {
			return nil, "", err
		}
		abs, _ := filepath.Abs(src.Path)
		return p, "path:" + abs, nil

	default:
		path, err := l.findByName(src.Name)
		if err != nil {
			return nil, "", err
		}
		p, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		// Cycle identity for named profiles is the name itself, so
		// p.toml extending q.toml extending p is caught regardless of
		// which directory each copy resolves to.
		return p, "name:" + src.Name, nil
	}
}

func (l *Loader) findByName(name string) (string, error) {
	candidates := []string{
		filepath.Join(l.ProjectDir, name+".toml"),
		filepath.Join(l.UserDir, name+".toml"),
		filepath.Join(l.CacheDir, name+".toml"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q (searched %s)", ErrProfileNotFound, name, strings.Join(candidates, ", "))
}

// List returns every profile discoverable in the search directories.
func (l *Loader) List() []Info {
	var infos []Info
	for _, dir := range []string{l.ProjectDir, l.UserDir, l.CacheDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			p, err := Load(path)
			if err != nil {
				continue
			}
			infos = append(infos, Info{
				Name:        p.Metadata.Name,
				Version:     p.Metadata.Version,
				Description: p.Metadata.Description,
				Path:        path,
			})
		}
	}
	return infos
}

// Info summarizes a discoverable profile for --list-profiles.
type Info struct {
	Name        string
	Version     string
	Description string
	Path        string
}

// mergeByID appends overlay definitions onto base with later-wins
// semantics: an overlay pattern replaces a base pattern sharing its
// effective id, in place.
func mergeByID(base, overlay []pattern.Definition) []pattern.Definition {
	out := make([]pattern.Definition, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.EffectiveID()] = i
	}
	for _, d := range overlay {
		if at, ok := index[d.EffectiveID()]; ok {
			out[at] = d
			continue
		}
		index[d.EffectiveID()] = len(out)
		out = append(out, d)
	}
	return out
}
