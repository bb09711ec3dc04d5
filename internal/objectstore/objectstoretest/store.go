// Package objectstoretest provides an in-memory object store for tests.
package objectstoretest

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/webotron/webotron/internal/objectstore"
)

var (
	_ objectstore.Client   = (*Store)(nil)
	_ objectstore.Uploader = (*Store)(nil)
)

// Object is a stored object.
type Object struct {
	Body        []byte
	ContentType string
}

// Bucket is a stored bucket. Foreign buckets belong to another account.
type Bucket struct {
	Name                string
	Region              string
	Foreign             bool
	Created             time.Time
	Policy              string
	Website             *types.WebsiteConfiguration
	PublicAccessBlocked bool
	Objects             map[string]Object
}

// Store implements objectstore.Client and objectstore.Uploader in memory.
// Every call is recorded in Calls, in order.
type Store struct {
	mu sync.Mutex

	buckets map[string]*Bucket
	calls   []string

	// Errors makes the named operation (e.g. "PutBucketPolicy") fail.
	Errors map[string]error
	// UploadErrors makes uploads of the given keys fail.
	UploadErrors map[string]error
	// UploadDelay is slept before each upload, honoring cancellation.
	UploadDelay time.Duration
}

// New returns an empty store.
func New() *Store {
	return &Store{
		buckets:      make(map[string]*Bucket),
		Errors:       make(map[string]error),
		UploadErrors: make(map[string]error),
	}
}

// AddBucket creates a bucket directly, without recording a call. New buckets
// have their public access blocked, like on AWS.
func (s *Store) AddBucket(name string, region string, foreign bool) *Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addBucketLocked(name, region, foreign)
}

func (s *Store) addBucketLocked(name string, region string, foreign bool) *Bucket {
	b := &Bucket{
		Name:                name,
		Region:              region,
		Foreign:             foreign,
		Created:             time.Date(2024, 1, 1, 0, 0, len(s.buckets), 0, time.UTC),
		PublicAccessBlocked: true,
		Objects:             make(map[string]Object),
	}
	s.buckets[name] = b

	return b
}

// Bucket returns a copy of the named bucket.
func (s *Store) Bucket(name string) (Bucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[name]
	if !ok {
		return Bucket{}, false
	}

	c := *b
	c.Objects = make(map[string]Object, len(b.Objects))
	for k, v := range b.Objects {
		c.Objects[k] = v
	}

	return c, true
}

// Calls returns the operations performed so far.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.calls)
}

// Reset forgets recorded calls.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = nil
}

func (s *Store) record(op string) error {
	s.calls = append(s.calls, op)

	return s.Errors[op]
}

func (s *Store) owned(name string) (*Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}

	if b.Foreign {
		return nil, fmt.Errorf("AccessDenied: bucket %s belongs to another account", name)
	}

	return b, nil
}

func (s *Store) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("ListBuckets"); err != nil {
		return nil, err
	}

	var names []string
	for name, b := range s.buckets {
		if !b.Foreign {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	out := &s3.ListBucketsOutput{}
	for _, name := range names {
		out.Buckets = append(out.Buckets, types.Bucket{
			Name:         aws.String(name),
			CreationDate: aws.Time(s.buckets[name].Created),
		})
	}

	return out, nil
}

func (s *Store) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("ListObjectsV2"); err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	var keys []string
	for k := range b.Objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	start := 0
	if params.ContinuationToken != nil {
		start, err = strconv.Atoi(*params.ContinuationToken)
		if err != nil {
			return nil, fmt.Errorf("InvalidArgument: bad continuation token %q", *params.ContinuationToken)
		}
	}

	limit := 1000
	if params.MaxKeys != nil && *params.MaxKeys > 0 {
		limit = int(*params.MaxKeys)
	}

	end := min(start+limit, len(keys))

	out := &s3.ListObjectsV2Output{
		Name:        params.Bucket,
		KeyCount:    aws.Int32(int32(end - start)),
		IsTruncated: aws.Bool(end < len(keys)),
	}

	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(b.Objects[k].Body))),
		})
	}

	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}

	return out, nil
}

func (s *Store) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("CreateBucket"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.Bucket)

	if b, ok := s.buckets[name]; ok {
		if b.Foreign {
			return nil, &types.BucketAlreadyExists{Message: aws.String("The requested bucket name is not available")}
		}
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("Your previous request to create the named bucket succeeded and you already own it")}
	}

	region := "us-east-1"
	if params.CreateBucketConfiguration != nil && params.CreateBucketConfiguration.LocationConstraint != "" {
		region = string(params.CreateBucketConfiguration.LocationConstraint)
	}

	s.addBucketLocked(name, region, false)

	return &s3.CreateBucketOutput{Location: aws.String("/" + name)}, nil
}

func (s *Store) GetBucketLocation(_ context.Context, params *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("GetBucketLocation"); err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	out := &s3.GetBucketLocationOutput{}
	// S3 reports the classic region as an empty constraint.
	if b.Region != "us-east-1" {
		out.LocationConstraint = types.BucketLocationConstraint(b.Region)
	}

	return out, nil
}

func (s *Store) DeletePublicAccessBlock(_ context.Context, params *s3.DeletePublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.DeletePublicAccessBlockOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("DeletePublicAccessBlock"); err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	b.PublicAccessBlocked = false

	return &s3.DeletePublicAccessBlockOutput{}, nil
}

func (s *Store) PutBucketPolicy(_ context.Context, params *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("PutBucketPolicy"); err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	if b.PublicAccessBlocked {
		return nil, fmt.Errorf("AccessDenied: public policies are blocked by the BlockPublicPolicy setting")
	}

	b.Policy = aws.ToString(params.Policy)

	return &s3.PutBucketPolicyOutput{}, nil
}

func (s *Store) PutBucketWebsite(_ context.Context, params *s3.PutBucketWebsiteInput, _ ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("PutBucketWebsite"); err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	b.Website = params.WebsiteConfiguration

	return &s3.PutBucketWebsiteOutput{}, nil
}

func (s *Store) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	// Read outside the lock, the body may be slow.
	var body []byte
	if params.Body != nil {
		var err error
		if body, err = io.ReadAll(params.Body); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("PutObject"); err != nil {
		return nil, err
	}

	key := aws.ToString(params.Key)
	if err := s.UploadErrors[key]; err != nil {
		return nil, err
	}

	b, err := s.owned(aws.ToString(params.Bucket))
	if err != nil {
		return nil, err
	}

	b.Objects[key] = Object{
		Body:        body,
		ContentType: aws.ToString(params.ContentType),
	}

	return &s3.PutObjectOutput{}, nil
}

func (s *Store) Upload(ctx context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if s.UploadDelay > 0 {
		select {
		case <-time.After(s.UploadDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if _, err := s.PutObject(ctx, input); err != nil {
		return nil, err
	}

	return &manager.UploadOutput{Key: input.Key}, nil
}
