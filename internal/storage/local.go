package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// DefaultRelayRetention 是本地中转文件的默认保留时长。
// 上传与检测是两次独立调用，文件要在中间窗口内持续可回源；
// 留足一次完整轮询预算（约 5 分钟）之外的余量，到期统一清理。
const DefaultRelayRetention = 2 * time.Hour

// LocalRelayStore 把本地上传的视频暂存到磁盘，并按 ID 对外提供回源下载。
// 仅在未配置 COS 时启用：此时腾讯云通过 {PublicBaseURL}/.../temp/{id} 拉取文件。
type LocalRelayStore struct {
	uploadDir     string
	publicBaseURL string
	logger        *zap.Logger

	// Retention 是中转文件的保留时长，过期文件在后续 Save/Resolve 时清理。
	Retention time.Duration

	mu    sync.Mutex
	files map[string]relayEntry // id -> 登记信息
}

type relayEntry struct {
	path    string
	savedAt time.Time
}

// NewLocalRelayStore 创建本地中转存储并确保目录存在。
func NewLocalRelayStore(uploadDir, publicBaseURL string, logger *zap.Logger) (*LocalRelayStore, error) {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败 (%s): %w", uploadDir, err)
	}
	return &LocalRelayStore{
		uploadDir:     uploadDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
		Retention:     DefaultRelayRetention,
		files:         make(map[string]relayEntry),
	}, nil
}

// CanServePublicly 报告本地中转路径是否可用（已配置可被腾讯云访问的公网地址）。
func (s *LocalRelayStore) CanServePublicly() bool {
	if s.publicBaseURL == "" {
		return false
	}
	// localhost 只对本机可见，腾讯云拉取必然失败，视作未配置。
	return !strings.Contains(s.publicBaseURL, "localhost") &&
		!strings.Contains(s.publicBaseURL, "127.0.0.1")
}

// Save 把上传内容写入磁盘并登记，返回中转 ID。
func (s *LocalRelayStore) Save(reader io.Reader, ext string) (string, error) {
	if ext == "" {
		ext = ".mp4"
	}
	id := uuid.NewString()
	filePath := filepath.Join(s.uploadDir, id+ext)

	file, err := os.Create(filePath)
	if err != nil {
		return "", moderation.NewInternalError("暂存上传文件失败", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(filePath)
		return "", moderation.NewInternalError("写入上传文件失败", err)
	}

	s.mu.Lock()
	s.sweepLocked()
	s.files[id] = relayEntry{path: filePath, savedAt: time.Now()}
	s.mu.Unlock()

	s.logger.Info("视频已暂存到本地中转",
		zap.String("中转ID(relay_id)", id),
		zap.String("路径(path)", filePath),
	)
	return id, nil
}

// Resolve 按 ID 查找磁盘路径，供回源下载接口使用。过期登记视作不存在。
func (s *LocalRelayStore) Resolve(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	entry, ok := s.files[id]
	return entry.path, ok
}

// PublicURL 返回中转文件的公网地址，腾讯云按该地址拉取视频。
func (s *LocalRelayStore) PublicURL(id string) string {
	return s.publicBaseURL + "/api/detect/tencent-video-ims/temp/" + id
}

// Remove 删除中转文件并注销登记，失败只记日志。
func (s *LocalRelayStore) Remove(id string) {
	s.mu.Lock()
	entry, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := os.Remove(entry.path); err != nil {
		s.logger.Warn("清理中转文件失败",
			zap.String("中转ID(relay_id)", id),
			zap.Error(err),
		)
	}
}

// sweepLocked 清理超过保留时长的登记与文件。调用方必须持有 s.mu。
func (s *LocalRelayStore) sweepLocked() {
	if s.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.Retention)
	for id, entry := range s.files {
		if entry.savedAt.After(cutoff) {
			continue
		}
		delete(s.files, id)
		if err := os.Remove(entry.path); err != nil {
			s.logger.Warn("清理过期中转文件失败",
				zap.String("中转ID(relay_id)", id),
				zap.Error(err),
			)
		}
	}
}
