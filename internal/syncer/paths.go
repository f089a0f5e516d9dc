package syncer

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrOutsideRoot is returned when a path or URL does not live below the
// root it is translated against.
var ErrOutsideRoot = errors.New("outside of the sync root")

// SyncRoot is the namespace path mirrored by sourceRoot: the door path of
// the source URL mounted under rootPath.
func SyncRoot(rootPath, sourceRoot string) (string, error) {
	u, err := url.Parse(sourceRoot)
	if err != nil {
		return "", fmt.Errorf("invalid source url: %w", err)
	}
	return path.Clean(rootPath + "/" + u.Path), nil
}

// SourceURL translates a file reported in watchedPath into its URL under
// sourceRoot.
func SourceURL(watchedPath, name, syncRoot, sourceRoot string) (string, error) {
	rel, ok := cutRoot(path.Clean(watchedPath), path.Clean(syncRoot))
	if !ok {
		return "", fmt.Errorf("%s: %w", watchedPath, ErrOutsideRoot)
	}

	u, err := url.Parse(sourceRoot)
	if err != nil {
		return "", fmt.Errorf("invalid source url: %w", err)
	}
	u.Path = path.Join("/", u.Path, rel, name)
	u.RawPath = ""

	return u.String(), nil
}

// DestinationURL mirrors sourceURL from below sourceRoot to below
// destinationRoot.
func DestinationURL(sourceURL, sourceRoot, destinationRoot string) (string, error) {
	src, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url: %w", err)
	}
	root, err := url.Parse(sourceRoot)
	if err != nil {
		return "", fmt.Errorf("invalid source root: %w", err)
	}
	if src.Scheme != root.Scheme || src.Host != root.Host {
		return "", fmt.Errorf("%s: %w", sourceURL, ErrOutsideRoot)
	}

	rel, ok := cutRoot(path.Clean("/"+src.Path), path.Clean("/"+root.Path))
	if !ok {
		return "", fmt.Errorf("%s: %w", sourceURL, ErrOutsideRoot)
	}

	dst, err := url.Parse(destinationRoot)
	if err != nil {
		return "", fmt.Errorf("invalid destination url: %w", err)
	}
	dst.Path = path.Join("/", dst.Path, rel)
	dst.RawPath = ""

	return dst.String(), nil
}

// cutRoot returns p relative to root. Both must be clean.
func cutRoot(p, root string) (string, bool) {
	if root == "/" {
		return p, strings.HasPrefix(p, "/")
	}
	if p == root {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, root+"/"); ok {
		return rest, true
	}
	return "", false
}

// Translator binds the roots of one sync.
type Translator struct {
	SyncRoot        string
	SourceRoot      string
	DestinationRoot string
}

func NewTranslator(rootPath, sourceRoot, destinationRoot string) (*Translator, error) {
	syncRoot, err := SyncRoot(rootPath, sourceRoot)
	if err != nil {
		return nil, err
	}
	if _, err := url.Parse(destinationRoot); err != nil {
		return nil, fmt.Errorf("invalid destination url: %w", err)
	}

	return &Translator{
		SyncRoot:        syncRoot,
		SourceRoot:      sourceRoot,
		DestinationRoot: destinationRoot,
	}, nil
}

// Translate returns source and destination URL of name in watchedPath.
func (t *Translator) Translate(watchedPath, name string) (string, string, error) {
	src, err := SourceURL(watchedPath, name, t.SyncRoot, t.SourceRoot)
	if err != nil {
		return "", "", err
	}
	dst, err := DestinationURL(src, t.SourceRoot, t.DestinationRoot)
	if err != nil {
		return "", "", err
	}
	return src, dst, nil
}
