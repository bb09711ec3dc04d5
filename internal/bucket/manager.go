// Package bucket provisions S3 buckets for static website hosting.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
	"github.com/webotron/webotron/internal/endpoint"
	"github.com/webotron/webotron/internal/objectstore"
	"github.com/webotron/webotron/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultRegion is the region S3 reports as an empty location constraint.
const DefaultRegion = "us-east-1"

// Manager performs bucket level operations. The zero value is not usable,
// use NewManager.
type Manager struct {
	client objectstore.Client
	// Bucket regions hardly ever change, cache them to avoid a
	// GetBucketLocation per website URL.
	regions *ttlcache.Cache[string, string]
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	regionTTL      time.Duration
	regionCapacity uint64
}

// WithRegionCache sets how long and how many bucket regions are cached.
func WithRegionCache(ttl time.Duration, capacity uint64) ManagerOption {
	return func(o *managerOptions) {
		o.regionTTL = ttl
		o.regionCapacity = capacity
	}
}

// NewManager returns a Manager operating through client.
func NewManager(client objectstore.Client, opts ...ManagerOption) *Manager {
	o := &managerOptions{
		regionTTL:      10 * time.Minute,
		regionCapacity: 100,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Manager{
		client: client,
		regions: ttlcache.New(
			ttlcache.WithTTL[string, string](o.regionTTL),
			ttlcache.WithCapacity[string, string](o.regionCapacity),
		),
	}
}

// ListBuckets returns every bucket owned by the caller.
func (m *Manager) ListBuckets(ctx context.Context) ([]types.Bucket, error) {
	out, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, m.failed(ctx, "list_buckets", "list buckets", err)
	}

	return out.Buckets, nil
}

// ListObjects calls fn for every object of the bucket, one page at a time.
// Iteration stops at the first error returned by fn.
func (m *Manager) ListObjects(ctx context.Context, name string, fn func(types.Object) error) error {
	p := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(name),
	})

	var i int
	for p.HasMorePages() {
		i++
		page, err := p.NextPage(ctx)
		if err != nil {
			return m.failed(ctx, "list_objects", fmt.Sprintf("list objects of %s, page %d", name, i), err)
		}

		for _, obj := range page.Contents {
			if err := fn(obj); err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureBucket creates the bucket in region. A bucket of that name already
// owned by the caller counts as success.
func (m *Manager) EnsureBucket(ctx context.Context, name string, region string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}

	// us-east-1 rejects an explicit location constraint.
	if region != "" && region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	if _, err := m.client.CreateBucket(ctx, input); err != nil {
		if isAlreadyOwned(err) {
			log.Info().
				Str("bucket", name).
				Msg("Bucket already exists and is owned by you")

			m.count(ctx, "create_bucket", "owned")

			return nil
		}

		return m.failed(ctx, "create_bucket", "create bucket "+name, err)
	}

	log.Info().
		Str("bucket", name).
		Str("region", region).
		Msg("Created bucket")

	m.count(ctx, "create_bucket", "ok")

	if region == "" {
		region = DefaultRegion
	}
	m.regions.Set(name, region, ttlcache.DefaultTTL)

	return nil
}

// SetPublicReadPolicy lifts the bucket's public access block, then attaches
// a policy granting everyone read access to its objects.
func (m *Manager) SetPublicReadPolicy(ctx context.Context, name string) error {
	policy, err := PublicReadPolicy(name)
	if err != nil {
		return err
	}

	// Buckets created since April 2023 block public policies by default.
	if _, err := m.client.DeletePublicAccessBlock(ctx, &s3.DeletePublicAccessBlockInput{
		Bucket: aws.String(name),
	}); err != nil {
		return m.failed(ctx, "delete_public_access_block", "delete public access block of "+name, err)
	}

	if _, err := m.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(name),
		Policy: aws.String(policy),
	}); err != nil {
		return m.failed(ctx, "put_policy", "put policy of "+name, err)
	}

	log.Info().
		Str("bucket", name).
		Msg("Attached public read policy")

	m.count(ctx, "put_policy", "ok")

	return nil
}

// EnableStaticWebsiteHosting serves the bucket as a website with the given
// index suffix and error document key.
func (m *Manager) EnableStaticWebsiteHosting(ctx context.Context, name string, indexDocument string, errorDocument string) error {
	if _, err := m.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(name),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{
				Suffix: aws.String(indexDocument),
			},
			ErrorDocument: &types.ErrorDocument{
				Key: aws.String(errorDocument),
			},
		},
	}); err != nil {
		return m.failed(ctx, "put_website", "put website configuration of "+name, err)
	}

	log.Info().
		Str("bucket", name).
		Str("indexDocument", indexDocument).
		Str("errorDocument", errorDocument).
		Msg("Enabled static website hosting")

	m.count(ctx, "put_website", "ok")

	return nil
}

// Region returns the region the bucket lives in.
func (m *Manager) Region(ctx context.Context, name string) (string, error) {
	if item := m.regions.Get(name); item != nil {
		return item.Value(), nil
	}

	out, err := m.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return "", m.failed(ctx, "get_location", "get location of "+name, err)
	}

	region := string(out.LocationConstraint)
	switch region {
	case "":
		region = DefaultRegion
	case "EU":
		// Legacy alias still returned for old buckets.
		region = "eu-west-1"
	}

	m.regions.Set(name, region, ttlcache.DefaultTTL)

	return region, nil
}

// WebsiteURL returns the http address the bucket's website is served at.
func (m *Manager) WebsiteURL(ctx context.Context, name string) (string, error) {
	url, _, err := m.website(ctx, name)
	return url, err
}

func (m *Manager) website(ctx context.Context, name string) (string, endpoint.Endpoint, error) {
	region, err := m.Region(ctx, name)
	if err != nil {
		return "", endpoint.Endpoint{}, err
	}

	e, _ := endpoint.ForRegion(region)

	return fmt.Sprintf("http://%s.%s", name, e.Host), e, nil
}

// Setup ensures the bucket exists and configures it for public website
// hosting, returning the website URL. Nothing is retried; the first failing
// step aborts the setup.
func (m *Manager) Setup(ctx context.Context, name string, region string, indexDocument string, errorDocument string) (string, error) {
	if err := m.EnsureBucket(ctx, name, region); err != nil {
		return "", err
	}

	if err := m.SetPublicReadPolicy(ctx, name); err != nil {
		return "", err
	}

	if err := m.EnableStaticWebsiteHosting(ctx, name, indexDocument, errorDocument); err != nil {
		return "", err
	}

	url, e, err := m.website(ctx, name)
	if err != nil {
		return "", err
	}

	// The hosted zone is what a Route 53 alias record to the website needs.
	ev := log.Info().
		Str("bucket", name).
		Str("url", url).
		Str("endpoint", e.Name)
	if e.ZoneID != "" {
		ev = ev.Str("hostedZoneID", e.ZoneID)
	}
	ev.Msg("Website ready")

	return url, nil
}

func isAlreadyOwned(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}

	// S3 compatible stores answer with a generic error carrying the code.
	return objectstore.ErrorCode(err) == "BucketAlreadyOwnedByYou"
}

func (m *Manager) failed(ctx context.Context, op string, msg string, err error) error {
	m.count(ctx, op, "error")

	return objectstore.Failed(msg, err)
}

func (m *Manager) count(ctx context.Context, op string, status string) {
	telemetry.BucketOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.KeyValue{
				Key:   "operation",
				Value: attribute.StringValue(op),
			},
			attribute.KeyValue{
				Key:   "status",
				Value: attribute.StringValue(status),
			},
		),
	)
}
