// Package storage 负责本地上传视频的中转：
// 优先传到腾讯云 COS 让审核服务直接拉取，未配置 COS 时落到本地磁盘
// 并通过公网地址临时暴露。
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// ObjectRef 描述一个已上传到 COS 的对象，供审核任务引用。
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Object string `json:"object"`
	URL    string `json:"url"`
}

// COSStore 通过 S3 兼容接口向腾讯云 COS 上传中转对象。
type COSStore struct {
	cfg    config.COSConfig
	client *minio.Client
	logger *zap.Logger
}

// NewCOSStore 创建 COS 存储。cfg 未启用（Bucket 为空）时返回 nil 而非错误，
// 调用方据此退回本地中转路径。
func NewCOSStore(cfg config.COSConfig, fallback config.TencentConfig, logger *zap.Logger) (*COSStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	accessKey, secretKey := cfg.AccessKey, cfg.SecretKey
	if accessKey == "" || secretKey == "" {
		accessKey, secretKey = fallback.SecretID, fallback.SecretKey
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("COS 已启用但缺少访问密钥: 请配置 cos.access_key/cos.secret_key 或腾讯云主密钥")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("cos.%s.myqcloud.com", cfg.Region)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 COS 客户端失败 (endpoint: %s): %w", endpoint, err)
	}

	logger.Info("COS 上传路径已启用",
		zap.String("存储桶(bucket)", cfg.Bucket),
		zap.String("地域(region)", cfg.Region),
	)
	return &COSStore{cfg: cfg, client: client, logger: logger}, nil
}

// Upload 把一段视频流写入 COS，返回对象引用。
// 对象键带日期前缀，便于按天清理：aigc-detect/2026-08-31/{uuid}.mp4。
func (s *COSStore) Upload(ctx context.Context, reader io.Reader, size int64, ext, contentType string) (*ObjectRef, error) {
	if ext == "" {
		ext = ".mp4"
	}
	objectKey := path.Join("aigc-detect",
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString()+ext)

	if _, err := s.client.PutObject(ctx, s.cfg.Bucket, objectKey, reader, size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return nil, moderation.NewInternalError("上传视频到 COS 失败", err)
	}

	ref := &ObjectRef{
		Bucket: s.cfg.Bucket,
		Region: s.cfg.Region,
		Object: objectKey,
		URL:    fmt.Sprintf("https://%s.cos.%s.myqcloud.com/%s", s.cfg.Bucket, s.cfg.Region, objectKey),
	}
	s.logger.Info("视频已上传到 COS",
		zap.String("对象键(object)", objectKey),
		zap.Int64("大小(bytes)", size),
	)
	return ref, nil
}
