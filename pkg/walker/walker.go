// Package walker discovers candidate files under one or more roots and
// feeds them to the scan workers. Filtering honors, in order: explicit
// exclude globs from configuration, .gitignore files at each visited
// directory, a project-level .antislopignore, and the extension and
// size bounds. Hidden files are included unless a rule excludes them.
package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skew202/antislop/pkg/ignore"
	"github.com/skew202/antislop/pkg/lang"
)

// Item is one unit of scan work: a file that passed every filter,
// classified by language. Ownership transfers to the worker that
// receives it.
type Item struct {
	// Path is the path as discovered (joined onto the given root).
	Path string
	// Rel is the slash-separated path relative to the walk root.
	Rel string
	// Language is the extension-based classification, or the shebang
	// classification for extensionless files. Unknown items are
	// only emitted when their extension is explicitly allowlisted, for
	// fallback scanning.
	Language lang.Language
	// Size in bytes, already bounded by MaxFileSize.
	Size int64
}

// Options bound the traversal.
type Options struct {
	// Extensions is the allowlist (lowercased, leading dot). "*" allows
	// everything.
	Extensions []string
	// Exclude holds doublestar globs from configuration, matched
	// against root-relative slash paths.
	Exclude []string
	// MaxFileSize in bytes; larger files are skipped silently and
	// counted. Zero means no bound.
	MaxFileSize int64
	// FollowSymlinks enables descending into symlinked directories.
	// Visited directories are tracked by resolved path either way, so
	// link cycles terminate.
	FollowSymlinks bool
}

// Stats counts what the traversal skipped. Written by the walker
// goroutine only; read after Walk returns.
type Stats struct {
	Oversize   int // files over MaxFileSize
	Excluded   int // excluded by glob, ignore rules, or extension
	Unreadable int // stat or readdir failures
}

// Walker streams work items for the scan. One Walker instance walks one
// set of roots once.
type Walker struct {
	opts    Options
	exts    map[string]bool
	allExts bool
	Stats   Stats
}

// New creates a walker with the given options.
func New(opts Options) *Walker {
	w := &Walker{opts: opts, exts: make(map[string]bool, len(opts.Extensions))}
	for _, ext := range opts.Extensions {
		if ext == "*" {
			w.allExts = true
			continue
		}
		w.exts[strings.ToLower(ext)] = true
	}
	return w
}

// Walk traverses the roots and sends work items to out. It returns when
// every root is exhausted or ctx is done. Walk closes out on return.
func (w *Walker) Walk(ctx context.Context, roots []string, out chan<- Item) error {
	defer close(out)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}

		if !info.IsDir() {
			// An explicit file argument bypasses ignore rules but still
			// honors the extension and size bounds.
			w.emit(ctx, root, filepath.Base(root), info.Size(), out)
			continue
		}

		matcher := ignore.NewMatcher()
		if err := matcher.LoadFile(filepath.Join(root, ".antislopignore"), ""); err != nil {
			return err
		}

		visited := make(map[string]bool)
		if err := w.walkDir(ctx, root, "", matcher, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// walkDir recursively visits one directory. rel is the slash path of
// dir relative to the root ("" for the root itself).
func (w *Walker) walkDir(ctx context.Context, dir, rel string, matcher *ignore.Matcher, visited map[string]bool, out chan<- Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Symlink-loop protection: track directories by resolved path.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.Stats.Unreadable++
		return nil
	}
	if visited[resolved] {
		return nil
	}
	visited[resolved] = true

	// Ignore files discovered here scope to this directory.
	if err := matcher.LoadFile(filepath.Join(dir, ".gitignore"), rel); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Stats.Unreadable++
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		childPath := filepath.Join(dir, name)

		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 {
			if target, err := os.Stat(childPath); err == nil && target.IsDir() {
				if !w.opts.FollowSymlinks {
					continue
				}
				isDir = true
			}
		}

		if w.excluded(childRel, isDir) || matcher.Ignored(childRel, isDir) {
			w.Stats.Excluded++
			continue
		}

		if isDir {
			if err := w.walkDir(ctx, childPath, childRel, matcher, visited, out); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.Stats.Unreadable++
			continue
		}
		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		w.emit(ctx, childPath, childRel, info.Size(), out)
	}
	return nil
}

// emit applies the extension and size bounds, then sends the item.
// Unless the "*" allowlist is set, extensionless files are kept only
// when a shebang classifies them.
func (w *Walker) emit(ctx context.Context, path, rel string, size int64, out chan<- Item) {
	ext := strings.ToLower(filepath.Ext(path))
	language := lang.FromPath(path)

	switch {
	case w.allExts || w.exts[ext]:
	case ext == "":
		language = sniffShebang(path)
		if language == lang.Unknown {
			w.Stats.Excluded++
			return
		}
	default:
		w.Stats.Excluded++
		return
	}

	if w.opts.MaxFileSize > 0 && size > w.opts.MaxFileSize {
		w.Stats.Oversize++
		return
	}

	item := Item{
		Path:     path,
		Rel:      filepath.ToSlash(rel),
		Language: language,
		Size:     size,
	}
	select {
	case out <- item:
	case <-ctx.Done():
	}
}

// sniffShebang reads just enough of an extensionless file to classify
// it by interpreter line.
func sniffShebang(path string) lang.Language {
	f, err := os.Open(path)
	if err != nil {
		return lang.Unknown
	}
	defer f.Close()

	buf := make([]byte, 128)
	n, _ := f.Read(buf)
	return lang.Detect(path, buf[:n])
}

// excluded checks the configured exclude globs against the relative
// path. Directory globs written with a trailing slash match the tree
// beneath them.
func (w *Walker) excluded(rel string, isDir bool) bool {
	for _, glob := range w.opts.Exclude {
		g := strings.TrimSuffix(glob, "/")
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		// "build/" or "build" style globs exclude whole subtrees.
		if !strings.ContainsAny(g, "*?[") && (rel == g || strings.HasPrefix(rel, g+"/")) {
			return true
		}
		if isDir {
			if ok, _ := doublestar.Match(g+"/**", rel); ok {
				return true
			}
		}
	}
	return false
}
