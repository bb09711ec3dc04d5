// Package sync mirrors a local directory tree into a bucket.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/webotron/webotron/config"
	"github.com/webotron/webotron/internal/mimetype"
	"github.com/webotron/webotron/internal/objectstore"
	"github.com/webotron/webotron/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidInput is returned when the local root is missing or is not a
	// directory. No remote call is made in that case.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied marks local entries that could not be read.
	ErrPermissionDenied = errors.New("permission denied")
)

// Options tune a Synchronizer.
type Options struct {
	// MaxConcurrentUploads bounds the uploads in flight. Values below 1 mean 1.
	MaxConcurrentUploads int
	// FailFast stops at the first failed upload. Otherwise every file is
	// attempted and all failures are returned together.
	FailFast bool
	// DryRun logs uploads instead of performing them.
	DryRun bool
	// KeyPrefix is prepended to every key.
	KeyPrefix string
}

// OptionsFromConfig reads Options from the sync.* configuration keys.
func OptionsFromConfig() Options {
	return Options{
		MaxConcurrentUploads: config.SyncMaxConcurrentUploads.Int(),
		FailFast:             config.SyncFailFast.Bool(),
		DryRun:               config.SyncDryRun.Bool(),
		KeyPrefix:            config.SyncKeyPrefix.String(),
	}
}

// Result summarises a sync.
type Result struct {
	Root    string
	Files   int
	Bytes   int64
	Skipped int
}

// Upload is a single file transfer.
type Upload struct {
	Path        string
	Key         string
	ContentType string
	Size        int64
}

// Synchronizer uploads directory trees through an objectstore.Uploader.
type Synchronizer struct {
	uploader objectstore.Uploader
	opts     Options
}

// New returns a Synchronizer using uploader.
func New(uploader objectstore.Uploader, opts Options) *Synchronizer {
	if opts.MaxConcurrentUploads < 1 {
		opts.MaxConcurrentUploads = 1
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")

	return &Synchronizer{
		uploader: uploader,
		opts:     opts,
	}
}

// Options returns the effective options, after defaults were applied.
func (s *Synchronizer) Options() Options {
	return s.opts
}

// Sync uploads every regular file below localRoot to bucket, keyed by its
// slash separated path relative to localRoot. Symbolic links, special files
// and unreadable entries are skipped with a warning.
//
// The returned Result is never nil and counts what was done, also on error.
func (s *Synchronizer) Sync(ctx context.Context, localRoot string, bucket string) (*Result, error) {
	started := time.Now()

	root, err := ResolveRoot(localRoot)
	if err != nil {
		return &Result{}, err
	}

	logger := log.With().
		Str("root", root).
		Str("bucket", bucket).
		Logger()

	logger.Info().
		Int("concurrency", s.opts.MaxConcurrentUploads).
		Bool("failFast", s.opts.FailFast).
		Bool("dryRun", s.opts.DryRun).
		Msg("Syncing directory")

	r := &run{
		s:      s,
		bucket: bucket,
		result: &Result{Root: root},
	}

	if s.opts.FailFast {
		r.g, r.ctx = errgroup.WithContext(ctx)
	} else {
		r.g, r.ctx = &errgroup.Group{}, ctx
	}
	r.g.SetLimit(s.opts.MaxConcurrentUploads)

	walkErr := r.walk(root)
	_ = r.g.Wait() // every upload failure is already recorded through r.fail

	// A cancelled parent context may have stopped the walk before any upload
	// failed.
	if walkErr != nil {
		r.fail(walkErr)
	}
	if err := ctx.Err(); err != nil && r.err == nil {
		r.fail(err)
	}

	telemetry.SyncDuration.Record(ctx, time.Since(started).Seconds(),
		metric.WithAttributes(
			attribute.KeyValue{
				Key:   "status",
				Value: attribute.StringValue(status(r.err)),
			},
		),
	)

	if r.err != nil {
		logger.Error().
			Err(r.err).
			Int("files", r.result.Files).
			Int("failures", len(multierr.Errors(r.err))).
			Msg("Sync failed")

		return r.result, r.err
	}

	logger.Info().
		Int("files", r.result.Files).
		Int64("bytes", r.result.Bytes).
		Int("skipped", r.result.Skipped).
		Dur("duration", time.Since(started)).
		Msg("Sync complete")

	return r.result, nil
}

// ResolveRoot expands a leading ~, makes p absolute and resolves symbolic
// links, then checks that it names a directory.
func ResolveRoot(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidInput)
	}

	if p == "~" || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, p, err)
		}
		p = filepath.Join(home, p[1:])
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, p, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, p, err)
	}

	fi, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, p, err)
	}

	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, p)
	}

	return resolved, nil
}

// Key returns the object key of the file at p below root.
func Key(root string, p string, prefix string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}

	return path.Join(prefix, filepath.ToSlash(rel)), nil
}

// run is the state of one Sync call.
type run struct {
	s      *Synchronizer
	bucket string
	g      *errgroup.Group
	// ctx is cancelled by the group after the first failure in fail fast mode.
	ctx context.Context

	mu     sync.Mutex
	result *Result
	err    error
}

// walk visits the tree depth first with an explicit stack, so deep trees
// cannot exhaust the goroutine stack. It returns early once ctx is done.
func (r *run) walk(root string) error {
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				if errors.Is(err, fs.ErrPermission) {
					return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, root, err)
				}
				return err
			}

			r.skip(dir, "unreadable directory", err)
			continue
		}

		// Subdirectories are pushed in reverse so they pop in name order.
		var subdirs []string

		for _, d := range entries {
			if r.ctx.Err() != nil {
				return nil
			}

			p := filepath.Join(dir, d.Name())

			switch t := d.Type(); {
			case t.IsDir():
				subdirs = append(subdirs, p)
			case t.IsRegular():
				if err := r.schedule(root, p, d); err != nil {
					return err
				}
			case t&fs.ModeSymlink != 0:
				r.skip(p, "symbolic link", nil)
			default:
				r.skip(p, "special file", nil)
			}
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return nil
}

func (r *run) schedule(root string, p string, d fs.DirEntry) error {
	key, err := Key(root, p, r.s.opts.KeyPrefix)
	if err != nil {
		return err
	}

	var size int64
	if fi, err := d.Info(); err == nil {
		size = fi.Size()
	}

	u := Upload{
		Path:        p,
		Key:         key,
		ContentType: mimetype.ContentType(key),
		Size:        size,
	}

	if r.s.opts.DryRun {
		log.Info().
			Str("bucket", r.bucket).
			Str("key", u.Key).
			Str("contentType", u.ContentType).
			Int64("size", u.Size).
			Msg("Would upload object")

		r.uploaded(u)

		return nil
	}

	r.g.Go(func() error {
		// With a limit of one the slot frees only after a failure has
		// cancelled ctx, so check before starting.
		if err := r.ctx.Err(); err != nil {
			return err
		}

		err := r.s.upload(r.ctx, r.bucket, u)
		switch {
		case err == nil:
			r.uploaded(u)
		case errors.Is(err, ErrPermissionDenied):
			r.skip(u.Path, "unreadable file", err)
			return nil
		case r.ctx.Err() != nil && errors.Is(err, context.Canceled):
			// Cancelled because a sibling failed, or by the caller; the
			// cause is recorded elsewhere.
		default:
			r.fail(err)
		}

		return err
	})

	return nil
}

func (r *run) uploaded(u Upload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.result.Files++
	r.result.Bytes += u.Size
}

func (r *run) skip(p string, reason string, err error) {
	log.Warn().
		Err(err).
		Str("path", p).
		Str("reason", reason).
		Msg("Skipping entry")

	telemetry.SkippedEntries.Add(r.ctx, 1,
		metric.WithAttributes(
			attribute.KeyValue{
				Key:   "reason",
				Value: attribute.StringValue(reason),
			},
		),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.result.Skipped++
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = multierr.Append(r.err, err)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// upload streams the file at u.Path to bucket.
func (s *Synchronizer) upload(ctx context.Context, bucket string, u Upload) error {
	f, err := os.Open(u.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return err
	}
	defer f.Close()

	log.Info().
		Str("bucket", bucket).
		Str("key", u.Key).
		Str("contentType", u.ContentType).
		Int64("size", u.Size).
		Msg("Uploading object")

	attrs := metric.WithAttributes(
		attribute.KeyValue{
			Key:   "bucket",
			Value: attribute.StringValue(bucket),
		},
	)

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(u.Key),
		Body:        &byteCounter{ctx: ctx, f: f, bucket: bucket},
		ContentType: aws.String(u.ContentType),
	}); err != nil {
		telemetry.UploadErrors.Add(ctx, 1, attrs)

		return objectstore.Failed(fmt.Sprintf("upload %s to bucket %s", u.Key, bucket), err)
	}

	telemetry.UploadedFiles.Add(ctx, 1, attrs)

	return nil
}
