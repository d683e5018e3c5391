package kafka

import (
	"Crosswire/internal/model"
	"Crosswire/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// ScheduledPostEvent 排程事件，由内容编排端投递
type ScheduledPostEvent struct {
	PostID      uint64   `json:"post_id"`
	NetworkID   uint64   `json:"network_id"`
	ContentID   uint64   `json:"content_id"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
	ScheduledAt int64    `json:"scheduled_at"` // Unix 秒
	NetworkType string   `json:"network_type"`
}

type ScheduleHandler struct {
	postRepo repository.ScheduledPostRepo
}

func NewScheduleHandler(postRepo repository.ScheduledPostRepo) *ScheduleHandler {
	return &ScheduleHandler{postRepo: postRepo}
}

func (s *ScheduleHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("schedule consumer setup")
	return nil
}

func (s *ScheduleHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("schedule consumer cleanup")
	return nil
}

func (s *ScheduleHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-schedule consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-schedule process batch error", "err", err)
		return err
	}
	log.Info("topic-schedule consume claim end")
	return nil
}

func (s *ScheduleHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event ScheduledPostEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 消息体损坏，直接跳过，避免阻塞整个分区
		log.WarnContext(ctx, "drop malformed schedule event", "offset", msg.Offset, "err", err)
		return nil
	}

	if event.PostID == 0 || event.NetworkID == 0 || event.NetworkType == "" {
		log.WarnContext(ctx, "drop incomplete schedule event",
			"post_id", event.PostID, "network_id", event.NetworkID, "network_type", event.NetworkType)
		return nil
	}

	post := &model.ScheduledPost{
		PostID:      event.PostID,
		NetworkID:   event.NetworkID,
		ContentID:   event.ContentID,
		Content:     event.Content,
		Attachments: model.EncodeAttachments(event.Attachments),
		ScheduledAt: time.Unix(event.ScheduledAt, 0),
		NetworkType: event.NetworkType,
	}
	return s.postRepo.Create(ctx, post)
}
