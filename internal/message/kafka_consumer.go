package message

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/logger"
)

// KafkaConsumer 从指令主题消费远程指令
type KafkaConsumer struct {
	consumerGroup SaramaConsumerGroup
	topic         string
	logger        *logger.Logger
	cancel        context.CancelFunc
	done          chan struct{}
	handler       CommandHandler
}

// NewKafkaConsumer 创建消费者组
func NewKafkaConsumer(cfg config.KafkaConfig, log *logger.Logger) (*KafkaConsumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Return.Errors = cfg.Consumer.ReturnErrors
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	if cfg.Consumer.OffsetsInitial == "oldest" {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	saramaCfg.Consumer.Group.Session.Timeout = 10 * time.Second
	saramaCfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama consumer group: %w", err)
	}

	if cfg.Consumer.ReturnErrors {
		go func() {
			for err := range consumerGroup.Errors() {
				log.Errorf("Sarama consumer group error: %v", err)
			}
		}()
	}

	return NewKafkaConsumerWithGroup(consumerGroup, cfg.CommandsTopic, log), nil
}

// NewKafkaConsumerWithGroup 使用已有的消费者组，测试中注入 mock
func NewKafkaConsumerWithGroup(group SaramaConsumerGroup, topic string, log *logger.Logger) *KafkaConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaConsumer{
		consumerGroup: group,
		topic:         topic,
		logger:        log,
	}
}

// Start 启动消费循环，每条指令交给 handler 处理
func (c *KafkaConsumer) Start(handler CommandHandler) error {
	c.handler = handler

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for {
			// Consume 在重平衡后返回，需要循环调用
			if err := c.consumerGroup.Consume(ctx, []string{c.topic}, c); err != nil {
				c.logger.Errorf("Error from Kafka consumer group: %v", err)
			}
			if ctx.Err() != nil {
				c.logger.Info("Kafka consumer context cancelled, stopping consumption")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()
	return nil
}

// Close 停止消费并关闭消费者组
func (c *KafkaConsumer) Close() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	if c.consumerGroup != nil {
		return c.consumerGroup.Close()
	}
	return nil
}

// -- sarama.ConsumerGroupHandler 接口实现 --

func (c *KafkaConsumer) Setup(sarama.ConsumerGroupSession) error {
	c.logger.Info("Kafka consumer group setup completed")
	return nil
}

func (c *KafkaConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	c.logger.Info("Kafka consumer group cleanup completed")
	return nil
}

// ConsumeClaim 逐条解码并执行指令。无论成功与否都标记位移，远程指令不重放
func (c *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	c.logger.Infof("Consuming remote commands from partition %d", claim.Partition())

	for message := range claim.Messages() {
		c.process(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *KafkaConsumer) process(ctx context.Context, message *sarama.ConsumerMessage) {
	var cmd Command
	if err := json.Unmarshal(message.Value, &cmd); err != nil {
		c.logger.Errorf("Failed to unmarshal Kafka message: %v, message: %s", err, string(message.Value))
		return
	}
	if cmd.Operation == "" {
		c.logger.Errorf("Remote command without operation skipped, message: %s", string(message.Value))
		return
	}

	if c.handler != nil {
		c.handler(ctx, &cmd)
	}

	c.logger.Debugf("Message consumed: Topic=%s, Partition=%d, Offset=%d, Key=%s",
		message.Topic, message.Partition, message.Offset, string(message.Key))
}

// NewKafkaConsumerForTest 仅为测试目的创建消费者实例，不连接消费者组
func NewKafkaConsumerForTest(log *logger.Logger, handler CommandHandler) *KafkaConsumer {
	c := NewKafkaConsumerWithGroup(nil, "", log)
	c.handler = handler
	return c
}
