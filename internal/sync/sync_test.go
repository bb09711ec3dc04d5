package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webotron/webotron/internal/objectstore"
	"github.com/webotron/webotron/internal/objectstore/objectstoretest"
	"go.uber.org/multierr"
)

const testBucket = "www.example.com"

// writeTree creates files below root; names use forward slashes.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func newStore() *objectstoretest.Store {
	store := objectstoretest.New()
	store.AddBucket(testBucket, "us-east-1", false)
	return store
}

func objects(t *testing.T, store *objectstoretest.Store) map[string]objectstoretest.Object {
	t.Helper()

	b, ok := store.Bucket(testBucket)
	require.True(t, ok)
	return b.Objects
}

func TestSync(t *testing.T) {
	t.Run("Keys and content types", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"a.txt":      "hello",
			"sub/b.html": "<h1>b</h1>",
		})

		store := newStore()
		result, err := New(store, Options{FailFast: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		got := objects(t, store)
		assert.Len(t, got, 2)
		assert.Equal(t, objectstoretest.Object{Body: []byte("hello"), ContentType: "text/plain"}, got["a.txt"])
		assert.Equal(t, objectstoretest.Object{Body: []byte("<h1>b</h1>"), ContentType: "text/html"}, got["sub/b.html"])

		assert.Equal(t, 2, result.Files)
		assert.Equal(t, int64(len("hello")+len("<h1>b</h1>")), result.Bytes)
		assert.Zero(t, result.Skipped)
	})

	t.Run("Every file once", func(t *testing.T) {
		root := t.TempDir()
		files := map[string]string{
			"index.html":              "index",
			"error.html":              "error",
			"css/site.css":            "body{}",
			"js/app.js":               "app()",
			"img/logo.png":            "png",
			"deep/a/b/c/d/e/f/g.json": "{}",
			"data.xyz123":             "???",
			"empty/.keep":             "",
		}
		writeTree(t, root, files)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "nothing", "here"), 0755))

		store := newStore()
		_, err := New(store, Options{FailFast: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		var want, have []string
		for k := range files {
			want = append(want, k)
		}
		for k := range objects(t, store) {
			have = append(have, k)
		}
		sort.Strings(want)
		sort.Strings(have)
		assert.Equal(t, want, have)

		calls := store.Calls()
		assert.Len(t, calls, len(files), "one upload per file, no duplicates")
		assert.Equal(t, "text/plain", objects(t, store)["data.xyz123"].ContentType)
	})

	t.Run("Idempotent", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"index.html":   "index",
			"css/site.css": "body{}",
		})

		store := newStore()
		s := New(store, Options{FailFast: true})

		_, err := s.Sync(context.Background(), root, testBucket)
		require.NoError(t, err)
		first := objects(t, store)

		_, err = s.Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Equal(t, first, objects(t, store))
		assert.Len(t, store.Calls(), 4, "no incremental sync, everything is uploaded again")
	})

	t.Run("Key prefix", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"sub/b.html": "b"})

		store := newStore()
		_, err := New(store, Options{KeyPrefix: "/v2/"}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Contains(t, objects(t, store), "v2/sub/b.html")
	})

	t.Run("Concurrent uploads", func(t *testing.T) {
		root := t.TempDir()
		files := make(map[string]string)
		for i := range 50 {
			files[fmt.Sprintf("dir%d/page-%02d.html", i%5, i)] = fmt.Sprintf("page %d", i)
		}
		writeTree(t, root, files)

		store := newStore()
		store.UploadDelay = time.Millisecond
		result, err := New(store, Options{MaxConcurrentUploads: 8, FailFast: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Equal(t, 50, result.Files)
		assert.Len(t, objects(t, store), 50)
	})

	t.Run("Dry run makes no remote calls", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.txt": "a", "b/c.txt": "c"})

		store := newStore()
		result, err := New(store, Options{DryRun: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Files)
		assert.Empty(t, store.Calls())
	})
}

func TestSyncInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"Missing path", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "does-not-exist")
		}},
		{"Regular file", func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "file.txt")
			require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
			return p
		}},
		{"Empty path", func(t *testing.T) string {
			return ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()

			result, err := New(store, Options{FailFast: true}).Sync(context.Background(), tt.path(t), testBucket)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.NotNil(t, result)
			assert.Empty(t, store.Calls())
		})
	}
}

func TestSyncFailures(t *testing.T) {
	files := map[string]string{
		"a.html": "a",
		"b.html": "b",
		"c.html": "c",
		"d.html": "d",
	}

	t.Run("Fail fast stops at first failure", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, files)

		store := newStore()
		store.UploadErrors["b.html"] = errors.New("SlowDown")

		result, err := New(store, Options{MaxConcurrentUploads: 1, FailFast: true}).Sync(context.Background(), root, testBucket)
		require.Error(t, err)
		assert.ErrorIs(t, err, objectstore.ErrRemoteOperationFailed)
		assert.Contains(t, err.Error(), "SlowDown")
		assert.Len(t, multierr.Errors(err), 1)

		// Entries are visited in name order, a.html succeeded and nothing
		// after b.html was attempted.
		assert.Equal(t, []string{"PutObject", "PutObject"}, store.Calls())
		assert.Equal(t, 1, result.Files)
		assert.Contains(t, objects(t, store), "a.html")
	})

	t.Run("Aggregate attempts every file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, files)

		store := newStore()
		store.UploadErrors["b.html"] = errors.New("SlowDown")
		store.UploadErrors["d.html"] = errors.New("InternalError")

		result, err := New(store, Options{MaxConcurrentUploads: 2, FailFast: false}).Sync(context.Background(), root, testBucket)
		require.Error(t, err)

		errs := multierr.Errors(err)
		assert.Len(t, errs, 2)
		for _, e := range errs {
			assert.ErrorIs(t, e, objectstore.ErrRemoteOperationFailed)
		}

		assert.Len(t, store.Calls(), 4)
		assert.Equal(t, 2, result.Files)
	})

	t.Run("Concurrent fail fast reports the failure", func(t *testing.T) {
		root := t.TempDir()
		many := make(map[string]string)
		for i := range 40 {
			many[fmt.Sprintf("f%02d.txt", i)] = "x"
		}
		writeTree(t, root, many)

		store := newStore()
		store.UploadDelay = time.Millisecond
		store.UploadErrors["f05.txt"] = errors.New("AccessDenied")

		result, err := New(store, Options{MaxConcurrentUploads: 4, FailFast: true}).Sync(context.Background(), root, testBucket)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AccessDenied")
		assert.Less(t, result.Files, 40)
		for _, e := range multierr.Errors(err) {
			assert.False(t, errors.Is(e, context.Canceled), "cancelled siblings are not failures")
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, files)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := newStore()
		_, err := New(store, Options{FailFast: true}).Sync(ctx, root, testBucket)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, store.Calls())
	})
}

func TestSyncSkips(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links and permissions need a unix filesystem")
	}

	t.Run("Symbolic links", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"real.txt": "real"})
		require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))
		require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

		store := newStore()
		result, err := New(store, Options{FailFast: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Files)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, []string{"real.txt"}, keys(objects(t, store)))
	})

	t.Run("Unreadable entries", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}

		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"ok.txt":         "ok",
			"secret.txt":     "secret",
			"private/x.html": "x",
		})
		require.NoError(t, os.Chmod(filepath.Join(root, "secret.txt"), 0))
		require.NoError(t, os.Chmod(filepath.Join(root, "private"), 0))
		t.Cleanup(func() {
			_ = os.Chmod(filepath.Join(root, "private"), 0755)
		})

		store := newStore()
		result, err := New(store, Options{FailFast: true}).Sync(context.Background(), root, testBucket)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Files)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, []string{"ok.txt"}, keys(objects(t, store)))
	})

	t.Run("Symlinked root is followed", func(t *testing.T) {
		target := t.TempDir()
		writeTree(t, target, map[string]string{"a.txt": "a"})
		link := filepath.Join(t.TempDir(), "site")
		require.NoError(t, os.Symlink(target, link))

		store := newStore()
		_, err := New(store, Options{FailFast: true}).Sync(context.Background(), link, testBucket)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, keys(objects(t, store)))
	})
}

func TestResolveRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	resolvedHome, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)

	got, err := ResolveRoot("~")
	require.NoError(t, err)
	assert.Equal(t, resolvedHome, got)

	dir := t.TempDir()
	got, err = ResolveRoot(dir + string(filepath.Separator) + ".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.False(t, strings.HasSuffix(got, "."))
}

func TestKey(t *testing.T) {
	root := filepath.Join("srv", "site")

	tests := []struct {
		name     string
		path     string
		prefix   string
		expected string
	}{
		{"Top level", filepath.Join(root, "index.html"), "", "index.html"},
		{"Nested", filepath.Join(root, "a", "b", "c.css"), "", "a/b/c.css"},
		{"Prefixed", filepath.Join(root, "a", "c.css"), "assets", "assets/a/c.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Key(root, tt.path, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func keys(m map[string]objectstoretest.Object) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
