package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/models"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// eventPublishTimeout 限制事件发布的等待时间，发布脱离请求生命周期异步进行。
const eventPublishTimeout = 15 * time.Second

// publishVerdict 按检测结论发布 flagged/passed 事件。
// 尽力而为：发布失败只记日志，不影响已经返回的 HTTP 响应。
func (s *Server) publishVerdict(content models.ContentRef, verdict moderation.Verdict) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()

		var err error
		if verdict.IsFlagged {
			err = s.producer.SendFlagged(ctx, &models.ContentFlaggedEvent{
				EventID:   uuid.NewString(),
				Timestamp: time.Now().UnixMilli(),
				Source:    constants.ServiceName,
				Content:   content,
				Verdict:   verdict,
			})
		} else {
			err = s.producer.SendPassed(ctx, &models.ContentPassedEvent{
				EventID:   uuid.NewString(),
				Timestamp: time.Now().UnixMilli(),
				Source:    constants.ServiceName,
				Content:   content,
				Verdict:   verdict,
			})
		}
		if err != nil {
			s.logger.Warn("发布检测结果事件失败",
				zap.String("内容类型(kind)", content.Kind),
				zap.Bool("是否命中(flagged)", verdict.IsFlagged),
				zap.Error(err),
			)
		}
	}()
}

// publishRelayFailure 发布转发失败事件，同样尽力而为。
func (s *Server) publishRelayFailure(route string, err error) {
	relayErr := moderation.AsRelayError(err)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()

		sendErr := s.producer.SendRelayFailure(ctx, &models.RelayFailureEvent{
			EventID:      uuid.NewString(),
			Timestamp:    time.Now().UnixMilli(),
			Source:       constants.ServiceName,
			Route:        route,
			ErrorCode:    relayErr.Code,
			ErrorMessage: relayErr.Message,
		})
		if sendErr != nil {
			s.logger.Warn("发布转发失败事件失败",
				zap.String("接口(route)", route),
				zap.Error(sendErr),
			)
		}
	}()
}
