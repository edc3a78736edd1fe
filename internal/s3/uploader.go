// server/internal/s3/uploader.go
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sppg-kitchen-api-server/config"
)

// putter is the slice of the S3 client the uploader needs.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stores evidence photos in an S3 (or S3-compatible) bucket.
type Uploader struct {
	Client           putter
	Bucket           string
	Region           string
	Endpoint         string
	CloudFrontDomain string
}

func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		Client:           client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		Endpoint:         cfg.Endpoint,
		CloudFrontDomain: cfg.CloudFrontDomain,
	}, nil
}

// Save uploads the photo under objectKey and returns its public URL.
func (u *Uploader) Save(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return u.URL(objectKey), nil
}

// URL is where objectKey is served from: CloudFront first, then the custom
// endpoint, then the regional S3 host.
func (u *Uploader) URL(objectKey string) string {
	switch {
	case u.CloudFrontDomain != "":
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	case u.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", u.Endpoint, u.Bucket, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
}
