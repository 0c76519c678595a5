package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage/mq"
)

// TestGoChannel_PublishSubscribe 测试进程内通道收发消息.
func TestGoChannel_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mq.New(ctx, configs.MQConfig{
		Type:      configs.MQTypeGoChannel,
		GoChannel: configs.MQGoChannelConfig{OutputBuffer: 8},
	}, mq.WithMetrics(true), mq.WithRegisterer(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	defer func() { _ = client.Close() }()

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	msgs, err := client.Subscribe(ctx, "uv.test")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := client.Publish(ctx, "uv.test", message.NewMessage(watermill.NewUUID(), []byte(`{"id":1}`))); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-msgs:
		if string(msg.Payload) != `{"id":1}` {
			t.Errorf("payload = %s", msg.Payload)
		}

		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	// 重复关闭无副作用
	if err := client.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// TestNew_Unsupported 测试未注册的类型.
func TestNew_Unsupported(t *testing.T) {
	if _, err := mq.New(context.Background(), configs.MQConfig{Type: "redis"}); err == nil {
		t.Error("expected error for unsupported mq type")
	}

	registered := map[configs.MQType]bool{}
	for _, typ := range mq.GetRegisteredMQTypes() {
		registered[typ] = true
	}

	if !registered[configs.MQTypeGoChannel] || !registered[configs.MQTypeNATS] {
		t.Errorf("registered types = %v", mq.GetRegisteredMQTypes())
	}
}
