// Package mq 基于 Watermill 提供统一的发布/订阅客户端，通过工厂注册不同后端.
//
// 支持的 MQ 类型：
//   - gochannel（进程内，默认）
//   - NATS（可选 JetStream）
//   - Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, cfg.Metrics)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	client.AddConsumer("audit", queue.TopicBlobOrphaned, handler)
//	_ = client.Run(ctx)
//	_ = client.Publish(queue.TopicFileUploaded, msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/yeisme/clouddrive/pkg/configs"
	nlog "github.com/yeisme/clouddrive/pkg/log"
	appmetrics "github.com/yeisme/clouddrive/pkg/metrics"
)

// DefaultRouterStartTimeout 等待路由器进入运行状态的时间.
const DefaultRouterStartTimeout = 10 * time.Second

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型（有序）.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher、Subscriber 与消费路由器.
type Client struct {
	kind       configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	logger     watermill.LoggerAdapter
}

// New 根据配置创建消息队列客户端.
func New(ctx context.Context, cfg configs.MQConfig, metricsCfg configs.MetricsConfig) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: DefaultRouterStartTimeout}, logger)
	if err != nil {
		_ = pub.Close()
		_ = sub.Close()

		return nil, fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	if metricsCfg.Enabled && metricsCfg.MQMetrics {
		builder := metrics.NewPrometheusMetricsBuilder(appmetrics.GetRegistry(), metricsCfg.Namespace, "mq")
		builder.AddPrometheusRouterMetrics(router)

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")

	return &Client{kind: cfg.Type, publisher: pub, subscriber: sub, router: router, logger: logger}, nil
}

// Type 返回后端类型.
func (c *Client) Type() configs.MQType { return c.kind }

// Publisher 返回底层 Publisher，供只依赖 message.Publisher 的组件使用.
func (c *Client) Publisher() message.Publisher { return c.publisher }

// Publish 实现 message.Publisher.
func (c *Client) Publish(topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 直接订阅主题，调用方负责 Ack/Nack.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// AddConsumer 在路由器上注册一个只消费不转发的处理器，需在 Run 之前调用.
func (c *Client) AddConsumer(name, topic string, handler message.NoPublishHandlerFunc) {
	c.router.AddNoPublisherHandler(name, topic, c.subscriber, handler)
}

// Run 在后台启动路由器并等待其进入运行状态.
func (c *Client) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := c.router.Run(ctx); err != nil {
			c.logger.Error("router run error", err, nil)
			errCh <- err
		}
	}()

	select {
	case <-c.router.Running():
		return nil
	case err := <-errCh:
		return err
	case <-time.After(DefaultRouterStartTimeout):
		return errors.New("mq router did not start in time")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HealthCheck 消费路由器未运行时返回错误.
func (c *Client) HealthCheck(_ context.Context) error {
	if !c.router.IsRunning() {
		return errors.New("mq router is not running")
	}

	return nil
}

// Close 先停止路由器，再关闭发布与订阅端.
func (c *Client) Close() error {
	var errs []error

	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}
