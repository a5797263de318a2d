// Package storage archives uploaded resume files.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archive stores raw resume uploads
type Archive interface {
	Put(ctx context.Context, userID, fileName, mime string, data []byte) (key string, err error)
}

// NopArchive discards uploads
type NopArchive struct{}

// Put returns an empty key
func (NopArchive) Put(ctx context.Context, userID, fileName, mime string, data []byte) (string, error) {
	return "", nil
}

// R2Config configures a Cloudflare R2 bucket
type R2Config struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Enabled reports whether every field is set
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Endpoint returns the S3 endpoint of the account
func (c R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// objectPutter is the subset of *s3.Client used by R2Archive
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Archive stores uploads in an R2 bucket
type R2Archive struct {
	bucket string
	client objectPutter
}

// NewR2Archive returns an R2Archive for the given configuration
func NewR2Archive(ctx context.Context, conf R2Config) (*R2Archive, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.Endpoint())
	})

	return &R2Archive{bucket: conf.Bucket, client: client}, nil
}

// ObjectKey returns the key an upload is stored under
func ObjectKey(userID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	return fmt.Sprintf("resumes/%s/%s-%s", userID, uuid.NewString(), name)
}

// Put stores data and returns its key
func (a *R2Archive) Put(ctx context.Context, userID, fileName, mime string, data []byte) (string, error) {
	key := ObjectKey(userID, fileName)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return key, nil
}
