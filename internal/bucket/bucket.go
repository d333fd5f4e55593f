package bucket

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	S3AccessKey       string `mapstructure:"s3AccessKey"`
	S3SecretAccessKey string `mapstructure:"s3SecretAccessKey"`
	S3Endpoint        string `mapstructure:"s3Endpoint"`
	S3BucketName      string `mapstructure:"s3BucketName"`
	S3BucketLocation  string `mapstructure:"s3BucketLocation"`
	BaseFolder        string `mapstructure:"baseFolder"`
	// SubdomainEndpoint is the CDN host serving the bucket, e.g. files.example.com.
	SubdomainEndpoint string `mapstructure:"subdomainEndpoint"`
	Insecure          bool   `mapstructure:"insecure"`
	ThumbnailWidth    int    `mapstructure:"thumbnailWidth"`
}

// objectClient is the part of the minio client the bucket uses.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type Bucket struct {
	cli objectClient
	*Config
}

const defaultThumbnailWidth = 480

// New creates a bucket backed by an S3 compatible object store.
func New(c *Config) (*Bucket, error) {
	cli, err := minio.New(c.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.S3AccessKey, c.S3SecretAccessKey, ""),
		Secure: !c.Insecure,
		Region: c.S3BucketLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}
	return newBucket(cli, c), nil
}

func newBucket(cli objectClient, c *Config) *Bucket {
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = defaultThumbnailWidth
	}
	return &Bucket{cli: cli, Config: c}
}

// GetBaseFolder returns the base folder for the bucket
func (b *Bucket) GetBaseFolder() string {
	return b.BaseFolder
}
