package upload

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/kbloader/internal/env"
)

const defaultS3Region = "us-east-1"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3BlobPublisher writes blobs straight into an S3-compatible bucket.
type S3BlobPublisher struct {
	bucket string
	client *s3.Client
}

// NewS3BlobPublisher builds an S3 client from cfg. Static credentials are
// used when an access key is configured; otherwise the default AWS
// credential chain applies. A non-empty Endpoint selects a custom
// S3-compatible service (MinIO and the like) with path-style addressing.
func NewS3BlobPublisher(ctx context.Context, cfg env.S3Config, httpClient *http.Client) (*S3BlobPublisher, error) {
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	if httpClient != nil {
		opts = append(opts, config.WithHTTPClient(httpClient))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobPublisher{bucket: cfg.Bucket, client: client}, nil
}

func (p *S3BlobPublisher) Publish(ctx context.Context, key string, body []byte) error {
	_, err := putObject(p.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return s3PublishError(err)
	}
	return nil
}

// s3PublishError keeps the HTTP status of a failed S3 call when the SDK
// reports one.
func s3PublishError(err error) error {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		code := withStatus.HTTPStatusCode()
		return &BlobPublishError{StatusCode: code, Status: http.StatusText(code), Err: err}
	}
	return &BlobPublishError{Err: err}
}
