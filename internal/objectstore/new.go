package objectstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/webotron/webotron/config"
)

// Config selects the account, region and endpoint the client talks to.
type Config struct {
	Profile      string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// ConfigFromKeys reads Config from the aws.* configuration keys.
func ConfigFromKeys() Config {
	return Config{
		Profile:      config.AWSProfile.String(),
		Region:       config.AWSRegion.String(),
		Endpoint:     config.AWSEndpoint.String(),
		AccessKey:    config.AWSAccessKey.String(),
		SecretKey:    config.AWSSecretKey.String(),
		UsePathStyle: config.AWSUsePathStyle.Bool(),
	}
}

// NewClient builds an S3 client. A custom endpoint always uses path-style
// addressing, S3 compatible stores rarely serve virtual hosted buckets. Credentials come from the static keys when
// both are set, from the named profile otherwise, and finally from the SDK's
// default chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}

// NewUploader wraps client in an upload manager.
func NewUploader(client manager.UploadAPIClient) *manager.Uploader {
	return manager.NewUploader(client)
}
