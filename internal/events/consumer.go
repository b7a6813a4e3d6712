package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// consumeRetryDelay thời gian chờ trước khi join lại group sau lỗi Consume
const consumeRetryDelay = time.Second

// MessageHandler xử lý một message. shouldMark = false thì message không được mark để retry.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer consumer group đọc topic scan event
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	logger  *zap.Logger
	ready   chan bool

	retryDelay time.Duration
}

// NewConsumer tạo mới Consumer
func NewConsumer(config KafkaConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Kafka consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		handler: handler,
		topic:   config.Topic,
		groupID: config.GroupID,
		logger:  logger,
		ready:   make(chan bool),

		retryDelay: consumeRetryDelay,
	}, nil
}

// consumeLoop join group lặp lại tới khi ctx bị huỷ, lỗi thì chờ retryDelay rồi thử lại
func (c *Consumer) consumeLoop(ctx context.Context, handler *groupHandler) {
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("Lỗi Kafka consumer", zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}
		if ctx.Err() != nil {
			return
		}
		// Session trước đã Setup thì cần channel mới cho lần join sau
		select {
		case <-handler.ready:
			handler.ready = make(chan bool)
		default:
		}
	}
}

// Start chạy vòng consume trong goroutine, trả về khi session đầu tiên sẵn sàng
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{messageHandler: c.handler, logger: c.logger, ready: c.ready}

	go c.consumeLoop(ctx, handler)

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.logger.Info("Kafka consumer started", zap.String("group", c.groupID), zap.String("topic", c.topic))

	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("Kafka consumer error", zap.Error(err))
		}
	}()

	return nil
}

// Close đóng consumer group
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	messageHandler MessageHandler
	logger         *zap.Logger
	ready          chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			shouldMark, err := h.messageHandler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				h.logger.Warn("Không xử lý được message",
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err))
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// ScanEventHandler decode ScanEvent rồi gọi Process. Message không decode được thì bỏ qua.
type ScanEventHandler struct {
	Process func(ctx context.Context, event *ScanEvent) error
	logger  *zap.Logger
}

// NewScanEventHandler tạo mới ScanEventHandler
func NewScanEventHandler(process func(ctx context.Context, event *ScanEvent) error, logger *zap.Logger) *ScanEventHandler {
	return &ScanEventHandler{Process: process, logger: logger}
}

// HandleMessage implement MessageHandler
func (h *ScanEventHandler) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var event ScanEvent
	if err := json.Unmarshal(message, &event); err != nil {
		h.logger.Warn("Bỏ qua message không hợp lệ", zap.Error(err))
		return true, nil
	}
	if event.RecordID == "" {
		return true, nil
	}
	if err := h.Process(ctx, &event); err != nil {
		return false, err
	}
	return true, nil
}
