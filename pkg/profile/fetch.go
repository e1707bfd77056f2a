package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skew202/antislop/pkg/httputil"
)

// CacheTTL is how long a cached remote profile stays fresh. Stale
// entries force a refetch.
const CacheTTL = 24 * time.Hour

// Fetcher retrieves remote profiles and caches them under the user
// cache directory. All fetching happens before the scan starts.
type Fetcher struct {
	CacheDir string
	Client   *httputil.Client
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewFetcher creates a fetcher caching into dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{
		CacheDir: dir,
		Client:   httputil.NewClient(),
		Now:      time.Now,
	}
}

// Fetch returns the profile at url, from cache when fresh. A fetched
// profile is validated before it is cached, so the cache never holds a
// profile that won't load.
func (f *Fetcher) Fetch(url string) (*Profile, error) {
	cachePath := f.cachePath(url)

	if f.fresh(cachePath) {
		if p, err := Load(cachePath); err == nil {
			return p, nil
		}
		// A corrupt cache entry falls through to a refetch.
	}

	ctx, cancel := context.WithTimeout(context.Background(), httputil.DefaultHTTPTimeout)
	defer cancel()

	resp, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", url, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	if err := os.MkdirAll(f.CacheDir, 0o755); err == nil {
		// Cache write failures are not fatal; the profile was fetched.
		_ = os.WriteFile(cachePath, data, 0o644)
	}

	return p, nil
}

// fresh reports whether a cache entry exists and is within the TTL.
func (f *Fetcher) fresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return f.Now().Sub(info.ModTime()) < CacheTTL
}

// cachePath derives the cache file for a URL from its content hash, so
// distinct URLs never collide.
func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.CacheDir, hex.EncodeToString(sum[:8])+".toml")
}
