package webotron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webotron/webotron/config"
	"github.com/webotron/webotron/internal/objectstore"
	"github.com/webotron/webotron/internal/objectstore/objectstoretest"
	websync "github.com/webotron/webotron/internal/sync"
)

func TestMain(m *testing.M) {
	Reload()
	os.Exit(m.Run())
}

func newSession(store *objectstoretest.Store) *Session {
	return NewSession(store, store)
}

func TestSession_SetupBucket(t *testing.T) {
	t.Run("New bucket", func(t *testing.T) {
		store := objectstoretest.New()

		url, err := newSession(store).SetupBucket(context.Background(), "www.example.com")
		require.NoError(t, err)
		assert.Equal(t, "http://www.example.com.s3-website-us-east-1.amazonaws.com", url)

		b, ok := store.Bucket("www.example.com")
		require.True(t, ok)
		assert.Contains(t, b.Policy, "arn:aws:s3:::www.example.com/*")
		require.NotNil(t, b.Website)
		assert.Equal(t, "index.html", aws.ToString(b.Website.IndexDocument.Suffix))
		assert.Equal(t, "error.html", aws.ToString(b.Website.ErrorDocument.Key))
	})

	t.Run("Owned bucket", func(t *testing.T) {
		store := objectstoretest.New()
		store.AddBucket("www.example.com", "us-east-1", false)

		_, err := newSession(store).SetupBucket(context.Background(), "www.example.com")
		assert.NoError(t, err)
	})

	t.Run("Bucket of another account", func(t *testing.T) {
		store := objectstoretest.New()
		store.AddBucket("www.example.com", "us-east-1", true)

		_, err := newSession(store).SetupBucket(context.Background(), "www.example.com")
		assert.ErrorIs(t, err, objectstore.ErrRemoteOperationFailed)
	})
}

func TestSession_Sync(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0644))

	t.Run("Reports the website URL", func(t *testing.T) {
		store := objectstoretest.New()
		store.AddBucket("site", "eu-central-1", false)

		result, err := newSession(store).Sync(context.Background(), root, "site")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)
		assert.Equal(t, "http://site.s3-website.eu-central-1.amazonaws.com", result.URL)
	})

	t.Run("Unknown website URL is not an error", func(t *testing.T) {
		store := objectstoretest.New()
		store.AddBucket("site", "us-east-1", false)
		store.Errors["GetBucketLocation"] = errors.New("AccessDenied")

		result, err := newSession(store).Sync(context.Background(), root, "site")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)
		assert.Empty(t, result.URL)
	})

	t.Run("Dry run makes no remote calls", func(t *testing.T) {
		config.SyncDryRun.Set(true)
		t.Cleanup(func() {
			config.SyncDryRun.Set(false)
		})

		store := objectstoretest.New()
		store.AddBucket("site", "us-east-1", false)

		result, err := newSession(store).Sync(context.Background(), root, "site")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)
		assert.Empty(t, result.URL)
		assert.Empty(t, store.Calls())
	})

	t.Run("Dry run against a missing bucket", func(t *testing.T) {
		config.SyncDryRun.Set(true)
		t.Cleanup(func() {
			config.SyncDryRun.Set(false)
		})

		store := objectstoretest.New()

		_, err := newSession(store).Sync(context.Background(), root, "nope")
		require.NoError(t, err)
		assert.Empty(t, store.Calls())
	})

	t.Run("Missing directory", func(t *testing.T) {
		store := objectstoretest.New()

		_, err := newSession(store).Sync(context.Background(), filepath.Join(root, "missing"), "site")
		assert.ErrorIs(t, err, websync.ErrInvalidInput)
		assert.Empty(t, store.Calls())
	})
}

func TestSession_ListObjects(t *testing.T) {
	store := objectstoretest.New()
	store.AddBucket("site", "us-east-1", false)
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0644))
	}

	s := newSession(store)
	_, err := s.Sync(context.Background(), root, "site")
	require.NoError(t, err)

	var keys []string
	require.NoError(t, s.ListObjects(context.Background(), "site", func(o types.Object) error {
		keys = append(keys, aws.ToString(o.Key))
		return nil
	}))
	assert.Equal(t, []string{"a.txt", "b.txt"}, keys)

	buckets, err := s.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "site", aws.ToString(buckets[0].Name))
}

func TestReload(t *testing.T) {
	require.Equal(t, "us-east-1", config.AWSRegion.String())

	config.AWSRegion.Set("eu-west-1")
	t.Cleanup(func() {
		config.AWSRegion.Set("us-east-1")
	})

	Reload()
	assert.Equal(t, "eu-west-1", config.AWSRegion.String())
}
