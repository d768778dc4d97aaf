package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/config"
)

// Store 是二进制存储协作方。领域逻辑只持有它返回的
// 不透明对象键(object key)，文件本体与交付完全由它负责。
type Store struct {
	client       *minio.Client
	bucket       string
	presignedTTL time.Duration
}

// globalStore 是应用级的存储实例。
var globalStore *Store

// InitStorage 初始化对象存储连接，并确保bucket存在。
func InitStorage(cfg config.StorageConfig) error {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("无法创建对象存储客户端: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("无法检查bucket是否存在: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("无法创建bucket: %w", err)
		}
	}

	globalStore = &Store{
		client:       client,
		bucket:       cfg.Bucket,
		presignedTTL: cfg.PresignedTTL,
	}
	logrus.WithField("bucket", cfg.Bucket).Info("对象存储连接成功！")
	return nil
}

// Put 上传一个文件，返回其不透明的对象键。
func Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	if globalStore == nil {
		return "", fmt.Errorf("对象存储尚未初始化")
	}
	_, err := globalStore.client.PutObject(ctx, globalStore.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传文件到对象存储失败: %w", err)
	}
	return objectKey, nil
}

// PresignedURL 为一个对象键生成限时下载URL。
func PresignedURL(ctx context.Context, objectKey string) (string, error) {
	if globalStore == nil {
		return "", fmt.Errorf("对象存储尚未初始化")
	}
	u, err := globalStore.client.PresignedGetObject(ctx, globalStore.bucket, objectKey, globalStore.presignedTTL, nil)
	if err != nil {
		return "", fmt.Errorf("生成下载URL失败: %w", err)
	}
	return u.String(), nil
}

// Remove 删除一个对象，用于元数据写入失败后的清理。
func Remove(ctx context.Context, objectKey string) error {
	if globalStore == nil {
		return fmt.Errorf("对象存储尚未初始化")
	}
	if err := globalStore.client.RemoveObject(ctx, globalStore.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象失败: %w", err)
	}
	return nil
}
