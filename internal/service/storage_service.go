package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"waterball_lms_backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService 基于 MinIO 的对象存储，目前只承载用户头像
type StorageService struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
		Secure: cfg.Storage.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &StorageService{Config: &cfg.Storage, Client: client}, nil
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.GetURL(filename), nil
}

func (s *StorageService) Delete(ctx context.Context, filename string) error {
	return s.Client.RemoveObject(ctx, s.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (s *StorageService) GetURL(filename string) string {
	if s.Config.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s",
			strings.TrimRight(s.Config.PublicBaseURL, "/"), s.Config.MinioBucket, filename)
	}
	return "/" + s.Config.MinioBucket + "/" + filename
}
