package message

import (
	"context"

	"github.com/IBM/sarama"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// EventProducer 定义了向消息队列发布网关事件的接口
type EventProducer interface {
	// PublishEvent 异步发布一个事件
	PublishEvent(event events.Event) error
	// Close 关闭生产者
	Close() error
}

// SaramaConsumerGroup sarama.ConsumerGroup 中消费者用到的部分，便于测试替换
type SaramaConsumerGroup interface {
	Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error
	Close() error
}

// CommandHandler 处理一条已解码的远程指令
type CommandHandler func(ctx context.Context, cmd *Command)

// RemoteClient 执行远程指令所需的EMP客户端操作
type RemoteClient interface {
	AuthorizeRemoteStart(ctx context.Context, req oicp.AuthorizeRemoteStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStartRequest]]
	AuthorizeRemoteStop(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest]]
	AuthorizeRemoteReservationStart(ctx context.Context, req oicp.AuthorizeRemoteReservationStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStartRequest]]
	AuthorizeRemoteReservationStop(ctx context.Context, req oicp.AuthorizeRemoteReservationStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStopRequest]]
}
