package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/kafka"
	"github.com/aigc-platform/detect_gateway/internal/storage"
	"github.com/aigc-platform/detect_gateway/internal/tencentclient"
	"github.com/aigc-platform/detect_gateway/internal/volcclient"
)

// Server 聚合各厂商客户端并对外提供 HTTP 接口。
// 调用方的厂商密钥只存在于服务端配置中，前端永远拿不到。
type Server struct {
	cfg        config.ServerConfig
	logger     *zap.Logger
	tencent    *tencentclient.Client
	ark        *volcclient.ArkClient
	visual     *volcclient.VisualClient
	cosStore   *storage.COSStore // 可为 nil，表示未启用 COS
	localStore *storage.LocalRelayStore
	producer   kafka.EventProducer

	engine     *gin.Engine
	httpServer *http.Server
}

// Dependencies 是构造 Server 需要的全部依赖，由 main 装配。
type Dependencies struct {
	Tencent    *tencentclient.Client
	Ark        *volcclient.ArkClient
	Visual     *volcclient.VisualClient
	COSStore   *storage.COSStore
	LocalStore *storage.LocalRelayStore
	Producer   kafka.EventProducer
}

// NewServer 创建 HTTP 服务并注册路由。
func NewServer(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Tencent == nil || deps.Ark == nil || deps.Visual == nil {
		return nil, fmt.Errorf("NewServer: 厂商客户端不能为空")
	}
	if deps.LocalStore == nil {
		return nil, fmt.Errorf("NewServer: 本地中转存储不能为空")
	}
	if deps.Producer == nil {
		deps.Producer = kafka.NewNoopProducer()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		tencent:    deps.Tencent,
		ark:        deps.Ark,
		visual:     deps.Visual,
		cosStore:   deps.COSStore,
		localStore: deps.LocalStore,
		producer:   deps.Producer,
		engine:     engine,
	}

	engine.Use(requestLogger(logger), recovery(logger), cors(cfg.AllowCORSOrigins))
	s.registerRoutes()

	host := cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)

	detect := s.engine.Group("/api/detect")
	{
		detect.POST("/tencent-ims", s.handleTencentImage)
		detect.POST("/tencent-video-ims", s.handleTencentVideo)
		detect.POST("/tencent-video-ims/upload", s.handleTencentVideoUpload)
		detect.GET("/tencent-video-ims/temp/:id", s.handleTempVideo)
		detect.POST("/volc-ims", s.handleVolcImage)
		detect.POST("/volc-video-ims", s.handleVolcVideo)
	}

	generate := s.engine.Group("/api/generate")
	{
		generate.POST("/image", s.handleGenerateImage)
		generate.POST("/video", s.handleGenerateVideo)
		generate.POST("/faceswap", s.handleFaceSwap)
		generate.POST("/seededit", s.handleSeedEdit)
	}
}

// Handler 暴露底层的 http.Handler，供测试直接驱动。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 开始监听并阻塞，直到服务关闭或出错。
func (s *Server) Start() error {
	s.logger.Info("HTTP 服务启动",
		zap.String("监听地址(addr)", s.httpServer.Addr),
		zap.String("服务(service)", constants.ServiceName),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP 服务异常退出: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭：停止接收新请求并等待在途请求完成。
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP 服务开始优雅关闭...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": constants.ServiceName,
	})
}
