package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/volcclient"
)

type generateImageRequest struct {
	Prompt    string `json:"prompt"`
	Size      string `json:"size"`
	Watermark *bool  `json:"watermark"`
}

func (s *Server) handleGenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}
	if req.Prompt == "" {
		writeError(c, moderation.NewInvalidParameter("需要 prompt"))
		return
	}

	// 水印默认开启，显式传 false 才关闭。
	watermark := true
	if req.Watermark != nil {
		watermark = *req.Watermark
	}

	imageURL, err := s.ark.GenerateImage(c.Request.Context(), req.Prompt, req.Size, watermark)
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}

type generateVideoRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"imageBase64"` // 非空时走图生视频
	Ratio       string `json:"ratio"`
	Duration    int    `json:"duration"`
}

func (s *Server) handleGenerateVideo(c *gin.Context) {
	var req generateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}
	if req.Prompt == "" {
		writeError(c, moderation.NewInvalidParameter("需要 prompt"))
		return
	}

	imageRef := req.ImageBase64
	if imageRef != "" {
		imageRef = asDataURL(imageRef, "image/jpeg")
	}
	videoURL, err := s.ark.GenerateVideo(c.Request.Context(), volcclient.VideoGenerationInput{
		Prompt:   req.Prompt,
		ImageRef: imageRef,
		Ratio:    req.Ratio,
		Duration: req.Duration,
	})
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": videoURL})
}

type faceSwapRequest struct {
	ImageBase64    string `json:"imageBase64"`    // 人脸来源图的 base64
	TemplateBase64 string `json:"templateBase64"` // 模板图的 base64
}

func (s *Server) handleFaceSwap(c *gin.Context) {
	var req faceSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}

	resultB64, err := s.visual.FaceSwap(c.Request.Context(),
		rawBase64(req.ImageBase64), rawBase64(req.TemplateBase64))
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": asDataURL(resultB64, "image/jpeg")})
}

// seedEditRequest 是指令图编辑的入参。provider 选择执行方：
// "ark"（默认，方舟图生图）或 "visual"（智能视觉签名调用）。
type seedEditRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"imageBase64"`
	Provider    string `json:"provider"`
}

func (s *Server) handleSeedEdit(c *gin.Context) {
	var req seedEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}
	if req.Prompt == "" || req.ImageBase64 == "" {
		writeError(c, moderation.NewInvalidParameter("需要 prompt 与 imageBase64"))
		return
	}

	var (
		imageURL string
		err      error
	)
	switch req.Provider {
	case "", "ark":
		imageURL, err = s.ark.EditImage(c.Request.Context(), req.Prompt,
			asDataURL(req.ImageBase64, "image/jpeg"))
	case "visual":
		var resultB64 string
		resultB64, err = s.visual.SeedEdit(c.Request.Context(), req.Prompt,
			rawBase64(req.ImageBase64))
		if err == nil {
			imageURL = asDataURL(resultB64, "image/jpeg")
		}
	default:
		writeError(c, moderation.NewInvalidParameter("provider 只支持 ark 或 visual"))
		return
	}
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}
