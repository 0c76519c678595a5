// Package mq 提供基于 Watermill 库的统一消息队列操作接口。
// 支持发布/订阅模式，并通过工厂模式抽象不同的 MQ 实现。
//
// 支持的 MQ 类型：
//   - gochannel（进程内，默认）
//   - NATS（支持 JetStream）
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, mq.WithMetrics(true))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), payload)
//	err = client.Publish(ctx, "uv.upload.published", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/uploadvault/pkg/configs"
	nlog "github.com/yeisme/uploadvault/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型.
func GetRegisteredMQTypes() []configs.MQType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	mqType     configs.MQType
	closeOnce  sync.Once
}

// Option 调整客户端行为.
type Option func(*options)

type options struct {
	metrics    bool
	registerer prometheus.Registerer
}

// WithMetrics 使用 watermill 的 prometheus 指标装饰发布与订阅.
func WithMetrics(enabled bool) Option {
	return func(o *options) { o.metrics = enabled }
}

// WithRegisterer 指定指标注册表，默认使用 prometheus.DefaultRegisterer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg configs.MQConfig, opts ...Option) (*Client, error) {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Component("mq"))

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if o.metrics {
		builder := metrics.NewPrometheusMetricsBuilder(o.registerer, configs.AppName, "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Bool("metrics", o.metrics).Msg("MQ 已初始化")

	return &Client{publisher: pub, subscriber: sub, mqType: cfg.Type}, nil
}

// Type 返回消息队列类型.
func (c *Client) Type() configs.MQType {
	return c.mqType
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 订阅主题，ctx 取消后通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// HealthCheck 报告客户端是否可用.
func (c *Client) HealthCheck(_ context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return errors.New("mq not initialized")
	}

	return nil
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	var err error

	c.closeOnce.Do(func() {
		if c.publisher != nil {
			err = errors.Join(err, c.publisher.Close())
		}

		// gochannel 的 Publisher 与 Subscriber 是同一个对象
		if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
			err = errors.Join(err, c.subscriber.Close())
		}
	})

	return err
}
