package infra

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tnqbao/gau-object-gallery/config"
)

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}
	]
}`

type MinioClient struct {
	Admin     *madmin.AdminClient
	Client    *minio.Client
	Endpoint  string
	Bucket    string
	publicURL string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Storage.Endpoint, "https://"), "http://")
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	accessKey := cfg.Storage.AccessKey
	if accessKey == "" {
		panic("MinIO access key is not configured")
	}

	secretKey := cfg.Storage.SecretKey
	if secretKey == "" {
		panic("MinIO secret key is not configured")
	}

	madminClient, err := madmin.New(endpoint, accessKey, secretKey, cfg.Storage.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:     madminClient,
		Client:    minioClient,
		Endpoint:  endpoint,
		Bucket:    cfg.Storage.Bucket,
		publicURL: cfg.Storage.PublicURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.ensureBucket(ctx, cfg.Storage.Region); err != nil {
		panic(fmt.Sprintf("Failed to prepare MinIO bucket %s: %v", client.Bucket, err))
	}

	// admin credentials are optional, the gallery only needs object access
	if info, err := madminClient.ServerInfo(ctx); err != nil {
		log.Printf("Warning: MinIO server info unavailable: %v", err)
	} else {
		log.Printf("Connected to MinIO: %s (mode: %s, servers: %d)", endpoint, info.Mode, len(info.Servers))
	}

	return client
}

func (m *MinioClient) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created MinIO bucket %s", m.Bucket)
	}

	if err := m.Client.SetBucketPolicy(ctx, m.Bucket, fmt.Sprintf(publicReadPolicy, m.Bucket)); err != nil {
		return fmt.Errorf("failed to set public read policy: %w", err)
	}

	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, name string, body io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, name, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object to MinIO: %w", err)
	}
	return nil
}

func (m *MinioClient) RemoveObject(ctx context.Context, name string) error {
	if err := m.Client.RemoveObject(ctx, m.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object from MinIO: %w", err)
	}
	return nil
}

func (m *MinioClient) PublicURL(name string) string {
	return m.publicURL + "/" + url.PathEscape(name)
}

func (m *MinioClient) Ping(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.Bucket)
	}
	return nil
}
