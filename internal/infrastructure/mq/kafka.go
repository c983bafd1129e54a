package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"mentor_sync/internal/config"
)

// KafkaPublisher 把变更事件写入 Kafka，按 collection/docId 分区保证同一文档有序
type KafkaPublisher struct {
	writer *kafka.Writer
	cfg    config.KafkaConfig
}

// NewKafkaPublisher 创建 Kafka 发布者
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	timeout := cfg.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaPublisher{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.HostPort),
			Topic:        cfg.ChangeTopic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: timeout,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// CreateTopic 创建变更主题（已存在时 Kafka 返回错误，仅记录日志）
func (k *KafkaPublisher) CreateTopic() {
	conn, err := kafka.Dial("tcp", k.cfg.HostPort)
	if err != nil {
		zap.L().Error("dial kafka failed", zap.Error(err))
		return
	}
	defer conn.Close()

	partitions := k.cfg.Partition
	if partitions <= 0 {
		partitions = 1
	}
	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             k.cfg.ChangeTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}); err != nil {
		zap.L().Warn("create change topic failed", zap.String("topic", k.cfg.ChangeTopic), zap.Error(err))
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Collection + "/" + event.DocID),
		Value: value,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

var _ ChangePublisher = (*KafkaPublisher)(nil)
