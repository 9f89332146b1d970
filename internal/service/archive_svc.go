package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ==================== 原始报文归档 ====================

// ArchiveConfig S3 兼容存储配置
type ArchiveConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // 自定义端点（MinIO / 腾讯云 COS 等 S3 兼容存储）
	BasePath  string // 对象 key 前缀
}

// ArchiveService 把每页原始平台报文落到对象存储
// 字段映射出问题时，对照归档报文是唯一可靠的排查手段
type ArchiveService struct {
	client   *s3.Client
	bucket   string
	basePath string
}

// NewArchiveService 创建归档服务
func NewArchiveService(cfg *ArchiveConfig) (*ArchiveService, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载存储配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ArchiveService{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: cfg.BasePath,
	}, nil
}

// SavePage 归档一页原始报文
// key 按 平台/资源/店铺/日期 分层，随机后缀防止同页重跑互相覆盖
func (s *ArchiveService) SavePage(ctx context.Context, platform, resource string, shopID int64, page int, payload []byte) error {
	key := s.pageKey(platform, resource, shopID, page)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("归档上传失败: %w", err)
	}
	return nil
}

func (s *ArchiveService) pageKey(platform, resource string, shopID int64, page int) string {
	datePath := time.Now().Format("2006/01/02")
	suffix := uuid.New().String()[:8]
	key := fmt.Sprintf("%s/%s/shop-%d/%s/page-%03d-%s.json", platform, resource, shopID, datePath, page, suffix)
	if s.basePath != "" {
		return s.basePath + "/" + key
	}
	return key
}
