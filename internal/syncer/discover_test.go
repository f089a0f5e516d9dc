package syncer

import (
	"context"
	"errors"
	"testing"

	"dcache-admin/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNamespace maps a directory to its children; entries ending in "/" are
// directories.
type fakeNamespace struct {
	tree  map[string][]string
	files map[string]bool
	fail  map[string]error
	calls []string
}

func (f *fakeNamespace) GetFileAttributes(_ context.Context, p string, params *client.FileAttributesParams) (*client.FileAttributes, error) {
	f.calls = append(f.calls, p)

	if err := f.fail[p]; err != nil {
		return nil, err
	}
	if f.files[p] {
		return &client.FileAttributes{FileType: "REGULAR"}, nil
	}

	children, ok := f.tree[p]
	if !ok {
		return nil, &client.APIError{StatusCode: 404}
	}

	attrs := &client.FileAttributes{FileType: client.FileTypeDir}
	if params == nil || !params.Children {
		return attrs, nil
	}
	for _, c := range children {
		if name, isDir := cutDirSuffix(c); isDir {
			attrs.Children = append(attrs.Children, client.FileAttributes{FileName: name, FileType: client.FileTypeDir})
		} else {
			attrs.Children = append(attrs.Children, client.FileAttributes{FileName: c, FileType: "REGULAR"})
		}
	}
	return attrs, nil
}

func cutDirSuffix(s string) (string, bool) {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1], true
	}
	return s, false
}

func newFakeNamespace() *fakeNamespace {
	return &fakeNamespace{
		tree: map[string][]string{
			"/data":           {"run1/", "run2/", "readme.txt"},
			"/data/run1":      {"a.dat", "deep/"},
			"/data/run1/deep": {"b.dat"},
			"/data/run2":      {},
		},
		files: map[string]bool{"/data/readme.txt": true},
	}
}

func TestDiscoverRecursive(t *testing.T) {
	ns := newFakeNamespace()

	paths, err := Discover(context.Background(), ns, "/pnfs/desy.de", "/data", true)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"/pnfs/desy.de/data",
		"/pnfs/desy.de/data/run1",
		"/pnfs/desy.de/data/run1/deep",
		"/pnfs/desy.de/data/run2",
	}, paths)
	assert.Equal(t, "/pnfs/desy.de/data", paths[0])
	assert.NotContains(t, ns.calls, "/data/readme.txt")
}

func TestDiscoverNonRecursive(t *testing.T) {
	ns := newFakeNamespace()

	paths, err := Discover(context.Background(), ns, "/pnfs/desy.de/", "data/", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"/pnfs/desy.de/data"}, paths)
	assert.Equal(t, []string{"/data"}, ns.calls)
}

func TestDiscoverStartIsFile(t *testing.T) {
	_, err := Discover(context.Background(), newFakeNamespace(), "/", "/data/readme.txt", true)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestDiscoverMissingStart(t *testing.T) {
	_, err := Discover(context.Background(), newFakeNamespace(), "/", "/nope", false)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestDiscoverListingFailureAborts(t *testing.T) {
	ns := newFakeNamespace()
	boom := errors.New("permission denied")
	ns.fail = map[string]error{"/data/run1/deep": boom}

	paths, err := Discover(context.Background(), ns, "/", "/data", true)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, paths)
}
