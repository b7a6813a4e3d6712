package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// ScanEvent sự kiện phát ra sau mỗi lần scan
type ScanEvent struct {
	EventID        string    `json:"event_id"`
	Source         string    `json:"source"`
	Outcome        string    `json:"outcome"`
	RecordID       string    `json:"record_id,omitempty"`
	SubDistrict    string    `json:"sub_district"`
	Village        string    `json:"village"`
	ScannedAddress string    `json:"scanned_address,omitempty"`
	Ordinal        int       `json:"ordinal,omitempty"`
	ParcelCount    int       `json:"parcel_count,omitempty"`
	OnTruck        bool      `json:"on_truck"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher phát sự kiện scan ra ngoài
type Publisher interface {
	Publish(ctx context.Context, event *ScanEvent) error
	Close() error
}

// KafkaPublisher publish sự kiện lên Kafka bằng SyncProducer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// KafkaConfig cấu hình Kafka
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaPublisher tạo mới KafkaPublisher
func NewKafkaPublisher(config KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, config.Topic, logger), nil
}

// NewKafkaPublisherWithProducer tạo publisher từ producer có sẵn
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish gửi event, key là record id để các event của một record vào cùng partition
func (kp *KafkaPublisher) Publish(ctx context.Context, event *ScanEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scan event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     kp.topic,
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
	}
	if event.RecordID != "" {
		msg.Key = sarama.StringEncoder(event.RecordID)
	}

	partition, offset, err := kp.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("gửi scan event: %w", err)
	}

	kp.logger.Debug("Đã publish scan event",
		zap.String("event_id", event.EventID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close đóng producer
func (kp *KafkaPublisher) Close() error {
	return kp.producer.Close()
}

// NoopPublisher dùng khi không cấu hình Kafka
type NoopPublisher struct{}

// Publish không làm gì
func (NoopPublisher) Publish(ctx context.Context, event *ScanEvent) error { return nil }

// Close không làm gì
func (NoopPublisher) Close() error { return nil }
