// Package webotron deploys static websites to S3 buckets.
package webotron

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
	"github.com/webotron/webotron/config"
	"github.com/webotron/webotron/internal/bucket"
	"github.com/webotron/webotron/internal/objectstore"
	websync "github.com/webotron/webotron/internal/sync"
)

// Session bundles the bucket manager and synchronizer sharing one client.
// Commands build one Session per invocation.
type Session struct {
	Buckets      *bucket.Manager
	Synchronizer *websync.Synchronizer
}

// NewSession returns a Session on top of the given client and uploader,
// configured from the sync.* keys.
func NewSession(client objectstore.Client, uploader objectstore.Uploader) *Session {
	return &Session{
		Buckets: bucket.NewManager(client,
			bucket.WithRegionCache(
				config.SyncRegionCacheExpirationTime.Duration(),
				config.SyncRegionCacheCapacity.UInt64(),
			),
		),
		Synchronizer: websync.New(uploader, websync.OptionsFromConfig()),
	}
}

// Connect builds a Session talking to S3 with the aws.* configuration keys.
func Connect(ctx context.Context) (*Session, error) {
	client, err := objectstore.NewClient(ctx, objectstore.ConfigFromKeys())
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return NewSession(client, objectstore.NewUploader(client)), nil
}

// ListBuckets returns the buckets of the account.
func (s *Session) ListBuckets(ctx context.Context) ([]types.Bucket, error) {
	return s.Buckets.ListBuckets(ctx)
}

// ListObjects calls fn for every object of the bucket.
func (s *Session) ListObjects(ctx context.Context, name string, fn func(types.Object) error) error {
	return s.Buckets.ListObjects(ctx, name, fn)
}

// SetupBucket provisions the bucket in the configured region for website
// hosting and returns its website URL.
func (s *Session) SetupBucket(ctx context.Context, name string) (string, error) {
	return s.Buckets.Setup(ctx, name,
		config.AWSRegion.String(),
		config.WebsiteIndexDocument.String(),
		config.WebsiteErrorDocument.String(),
	)
}

// SyncResult is the outcome of Sync.
type SyncResult struct {
	*websync.Result
	// URL is empty when the website address could not be determined.
	URL string
}

// Sync uploads localRoot to the bucket. Failing to resolve the website URL
// afterwards is logged and does not fail the sync. A dry run makes no remote
// call at all, so its URL is left empty.
func (s *Session) Sync(ctx context.Context, localRoot string, name string) (*SyncResult, error) {
	result, err := s.Synchronizer.Sync(ctx, localRoot, name)
	if err != nil || s.Synchronizer.Options().DryRun {
		return &SyncResult{Result: result}, err
	}

	url, err := s.Buckets.WebsiteURL(ctx, name)
	if err != nil {
		log.Warn().
			Err(err).
			Str("bucket", name).
			Msg("Failed to determine website URL")
	}

	return &SyncResult{Result: result, URL: url}, nil
}
