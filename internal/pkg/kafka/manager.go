package kafka

import (
	"Crosswire/internal/api/config"
	"Crosswire/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	scheduleConsumer sarama.ConsumerGroup
	scheduleHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, postRepo repository.ScheduledPostRepo) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	scheduleConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaScheduleConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	scheduleHandler := NewScheduleHandler(postRepo)

	return &ConsumerManager{
		scheduleConsumer: scheduleConsumer,
		scheduleHandler:  scheduleHandler,
	}, nil
}

// Start 启动所有消费者，阻塞直到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaScheduleConsumer.Topic
		log.Info("Schedule consumer started", "topic", topic)
		for {
			if err := m.scheduleConsumer.Consume(ctx, []string{topic}, m.scheduleHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.scheduleConsumer.Close(); err != nil {
		log.Error("Failed to close schedule consumer", "err", err)
	}

	return nil
}
