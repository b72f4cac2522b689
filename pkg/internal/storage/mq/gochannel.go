package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/clouddrive/pkg/configs"
)

func init() {
	RegisterFactory(configs.MQTypeGoChannel, goChannelFactory)
}

// goChannelFactory 创建进程内 Pub/Sub，发布与订阅共用同一个实例.
func goChannelFactory(
	_ context.Context,
	cfg configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.GoChannel.OutputBuffer,
	}, logger)

	return pubsub, sharedSubscriber{pubsub}, nil
}

// sharedSubscriber 避免 Close 时对同一个 GoChannel 关闭两次.
type sharedSubscriber struct {
	*gochannel.GoChannel
}

func (sharedSubscriber) Close() error { return nil }
