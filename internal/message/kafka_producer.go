package message

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/logger"
)

// KafkaProducer 将网关事件以JSON写入事件主题
type KafkaProducer struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *logger.Logger
}

// NewKafkaProducer 创建一个新的 KafkaProducer
func NewKafkaProducer(cfg config.KafkaConfig, log *logger.Logger) (*KafkaProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal     // 只等待本地确认
	saramaCfg.Producer.Compression = sarama.CompressionSnappy // 压缩
	saramaCfg.Producer.Flush.Frequency = cfg.Producer.FlushFrequency
	saramaCfg.Producer.Retry.Max = cfg.Producer.RetryMax
	saramaCfg.Producer.Return.Successes = cfg.Producer.ReturnSuccess
	saramaCfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka async producer: %w", err)
	}
	return NewKafkaProducerWithClient(producer, cfg.EventsTopic, log), nil
}

// NewKafkaProducerWithClient 使用已有的 AsyncProducer，测试中注入 mock
func NewKafkaProducerWithClient(producer sarama.AsyncProducer, topic string, log *logger.Logger) *KafkaProducer {
	if log == nil {
		log = logger.Nop()
	}
	kp := &KafkaProducer{
		producer: producer,
		topic:    topic,
		logger:   log,
	}

	// 处理成功和失败的投递通知
	go kp.handleSuccesses()
	go kp.handleErrors()
	return kp
}

// PublishEvent 序列化事件并投递
func (p *KafkaProducer) PublishEvent(event events.Event) error {
	eventData, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	// 同一次交互的事件共用跟踪标识作为Key，落入同一分区保持顺序
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GetMetadata().EventTrackingID.String()),
		Value: sarama.ByteEncoder(eventData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.GetType())},
			{Key: []byte("operation"), Value: []byte(event.GetOperation())},
		},
	}

	p.producer.Input() <- msg
	return nil
}

// Attach 订阅事件中心，把所有事件转发到Kafka。返回取消订阅函数
func (p *KafkaProducer) Attach(hub *events.Hub) func() {
	return hub.Subscribe(func(event events.Event) {
		if err := p.PublishEvent(event); err != nil {
			p.logger.ErrorWithErr(err, "Failed to publish event to Kafka")
		}
	})
}

// Close 关闭生产者并等待缓冲区中的消息发送完毕
func (p *KafkaProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

func (p *KafkaProducer) handleSuccesses() {
	log := p.logger.GetLogger()
	for msg := range p.producer.Successes() {
		log.Debug().
			Str("topic", msg.Topic).
			Str("key", encoderString(msg.Key)).
			Msg("Kafka message sent successfully")
	}
}

func (p *KafkaProducer) handleErrors() {
	log := p.logger.GetLogger()
	for err := range p.producer.Errors() {
		log.Error().
			Err(err).
			Str("topic", err.Msg.Topic).
			Str("key", encoderString(err.Msg.Key)).
			Msg("Failed to send Kafka message")
	}
}

func encoderString(enc sarama.Encoder) string {
	if enc == nil {
		return ""
	}
	b, err := enc.Encode()
	if err != nil {
		return ""
	}
	return string(b)
}
