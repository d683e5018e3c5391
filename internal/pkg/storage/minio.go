package storage

import (
	"Crosswire/internal/api/config"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// Bucket 附件存储桶
	Bucket string
)

// ObjectLoader 按对象 key 读取附件内容
type ObjectLoader interface {
	Load(ctx context.Context, path string) (data []byte, contentType string, err error)
}

// Init 初始化 MinIO 客户端
func Init() error {
	cfg := config.Cfg.MinIO

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	if _, err = client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}

	Client = client
	Bucket = cfg.Bucket
	return nil
}

type minioLoader struct{}

// NewObjectLoader 返回基于全局客户端的附件读取器
func NewObjectLoader() ObjectLoader {
	return &minioLoader{}
}

func (s *minioLoader) Load(ctx context.Context, path string) ([]byte, string, error) {
	obj, err := Client.GetObject(ctx, Bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat object %s: %w", path, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, stat.ContentType, nil
}
