package syncer

import (
	"context"
	"errors"
	"fmt"
	"path"

	"dcache-admin/internal/client"
	"dcache-admin/internal/logger"

	"go.uber.org/zap"
)

var ErrNotDirectory = errors.New("not a directory")

// Lister reads namespace entries. *client.NamespaceService satisfies it.
type Lister interface {
	GetFileAttributes(ctx context.Context, path string, params *client.FileAttributesParams) (*client.FileAttributes, error)
}

// Discover returns the namespace paths to watch: startPath and, when
// recursive, every directory below it. startPath is a path as seen by the
// frontend; the returned paths are prefixed with rootPath. Any listing
// failure aborts the discovery.
func Discover(ctx context.Context, lister Lister, rootPath, startPath string, recursive bool) ([]string, error) {
	start := path.Clean("/" + startPath)

	var params *client.FileAttributesParams
	if recursive {
		params = &client.FileAttributesParams{Children: true}
	}

	attrs, err := lister.GetFileAttributes(ctx, start, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", start, err)
	}
	if !attrs.IsDir() {
		return nil, fmt.Errorf("%s: %w", start, ErrNotDirectory)
	}

	paths := []string{path.Clean(rootPath + "/" + start)}
	if !recursive {
		return paths, nil
	}

	logger.Log.Debug("scanning namespace",
		zap.String("path", start))

	stack := subdirs(start, attrs)
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		logger.Log.Debug("directory found",
			zap.String("path", dir))
		paths = append(paths, path.Clean(rootPath+"/"+dir))

		attrs, err := lister.GetFileAttributes(ctx, dir, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		stack = append(stack, subdirs(dir, attrs)...)
	}

	return paths, nil
}

func subdirs(parent string, attrs *client.FileAttributes) []string {
	var dirs []string
	for _, child := range attrs.Children {
		if child.IsDir() {
			dirs = append(dirs, path.Join(parent, child.FileName))
		}
	}
	return dirs
}
