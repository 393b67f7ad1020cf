// Package media maps stored media references onto files under the media root
// or onto external URLs.
package media

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("media file not found")
	ErrInvalidPath = errors.New("invalid media path")
)

// Source is where a media reference lives: exactly one of Path or URL is set.
type Source struct {
	Path string
	URL  string
}

type Resolver struct {
	root      string
	urlPrefix string
}

func NewResolver(root, urlPrefix string) *Resolver {
	if urlPrefix == "" {
		urlPrefix = "/media/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Resolver{root: root, urlPrefix: urlPrefix}
}

func (r *Resolver) Root() string { return r.root }

// Prefix is the URL path stored files are published under, always ending in "/".
func (r *Resolver) Prefix() string { return r.urlPrefix }

func IsExternal(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// PublicURL returns the URL clients use for ref. External URLs pass through.
func (r *Resolver) PublicURL(ref *string) *string {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil
	}
	if IsExternal(*ref) {
		out := *ref
		return &out
	}
	out := r.urlPrefix + strings.TrimPrefix(path.Clean("/"+*ref), "/")
	return &out
}

// Resolve locates ref on disk below the media root, refusing anything that
// escapes it.
func (r *Resolver) Resolve(ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Source{}, ErrNotFound
	}
	if IsExternal(ref) {
		return Source{URL: ref}, nil
	}
	if strings.Contains(ref, "\x00") {
		return Source{}, ErrInvalidPath
	}
	for _, part := range strings.Split(filepath.ToSlash(ref), "/") {
		if part == ".." {
			return Source{}, ErrInvalidPath
		}
	}

	root, err := filepath.Abs(r.root)
	if err != nil {
		return Source{}, err
	}
	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Source{}, ErrInvalidPath
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, ErrNotFound
		}
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, ErrNotFound
	}
	return Source{Path: full}, nil
}
