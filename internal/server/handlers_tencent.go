package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/models"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/tencentclient"
)

// tencentImageRequest 是图片检测接口的入参。
// fileContent 与 fileUrl 二选一，二者都给时以 fileContent 为准（与腾讯云一致）。
type tencentImageRequest struct {
	FileContent string `json:"fileContent"`
	FileURL     string `json:"fileUrl"`
	BizType     string `json:"bizType"`
	DataID      string `json:"dataId"`
}

func (s *Server) handleTencentImage(c *gin.Context) {
	var req tencentImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}

	outcome, err := s.tencent.ImageModeration(c.Request.Context(), tencentclient.ImageModerationRequest{
		FileContent: req.FileContent,
		FileUrl:     req.FileURL,
		BizType:     req.BizType,
		DataId:      req.DataID,
	})
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}

	s.publishVerdict(models.ContentRef{
		Kind:   "image",
		Vendor: "tencent",
		URL:    req.FileURL,
		DataID: req.DataID,
	}, outcome.Verdict)
	c.JSON(http.StatusOK, outcome)
}

// tencentVideoRequest 是视频检测接口的入参。
// videoUrl 与 cosInfo 二选一，cosInfo 优先（审核服务直接从 COS 拉取更稳定）。
// cosInfo 的字段名与上传接口的返回保持一致，可原样回传。
type tencentVideoRequest struct {
	VideoURL string       `json:"videoUrl"`
	COSInfo  *cosInfoBody `json:"cosInfo"`
}

// cosInfoBody 是 COS 对象定位信息在接口上的形状，上传返回与检测入参共用。
type cosInfoBody struct {
	Bucket string `json:"Bucket"`
	Region string `json:"Region"`
	Object string `json:"Object"`
}

func (s *Server) handleTencentVideo(c *gin.Context) {
	var req tencentVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}

	input := tencentclient.VideoInput{URL: req.VideoURL}
	if req.COSInfo != nil {
		input.COS = &tencentclient.BucketInfo{
			Bucket: req.COSInfo.Bucket,
			Region: req.COSInfo.Region,
			Object: req.COSInfo.Object,
		}
	}

	outcome, err := s.tencent.DetectVideo(c.Request.Context(), input)
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}

	s.publishVerdict(models.ContentRef{
		Kind:   "video",
		Vendor: "tencent",
		URL:    req.VideoURL,
	}, outcome.Verdict)
	c.JSON(http.StatusOK, outcome)
}

// handleTencentVideoUpload 接收本地视频文件并中转，返回后续检测可用的地址。
// 检测是独立的第二步：调用方拿返回的 url/cosInfo 再请求视频检测接口。
// 配置了 COS 时先传 COS，返回 {url, cosInfo}；否则落到本地磁盘并按公网地址
// 暴露回源下载，返回 {url, id}。两条路都不可用时拒绝并给出修复指引。
func (s *Server) handleTencentVideoUpload(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, moderation.NewInvalidParameter("需要 multipart 字段 file（视频文件）"))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, moderation.NewInternalError("读取上传文件失败", err))
		return
	}
	defer file.Close()

	if s.cosStore != nil {
		ref, uploadErr := s.cosStore.Upload(c.Request.Context(), file, fileHeader.Size, ext,
			fileHeader.Header.Get("Content-Type"))
		if uploadErr != nil {
			s.publishRelayFailure(c.FullPath(), uploadErr)
			writeError(c, uploadErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"url": ref.URL,
			"cosInfo": cosInfoBody{
				Bucket: ref.Bucket,
				Region: ref.Region,
				Object: ref.Object,
			},
		})
		return
	}

	if !s.localStore.CanServePublicly() {
		writeError(c, moderation.NewMissingCredential(
			"本地视频上传需要 COS 或公网地址：请配置 cos.bucket（推荐），"+
				"或把 server.public_base_url 设为腾讯云可访问的公网地址（如 ngrok 域名，localhost 无效）"))
		return
	}
	relayID, err := s.localStore.Save(file, ext)
	if err != nil {
		writeError(c, err)
		return
	}
	// 文件要留到后续检测的回源窗口结束，按保留时长统一清理，不随请求删除。
	c.JSON(http.StatusOK, gin.H{
		"url": s.localStore.PublicURL(relayID),
		"id":  relayID,
	})
}

// handleTempVideo 按中转 ID 回源本地暂存的视频，供腾讯云拉取。
func (s *Server) handleTempVideo(c *gin.Context) {
	id := c.Param("id")
	filePath, ok := s.localStore.Resolve(id)
	if !ok {
		writeErrorStatus(c, http.StatusNotFound,
			moderation.CodeInvalidParameter, "中转文件不存在或已过期")
		return
	}

	s.logger.Debug("回源本地中转视频",
		zap.String("中转ID(relay_id)", id),
		zap.String("来源(client_ip)", c.ClientIP()),
	)
	c.File(filePath)
}
