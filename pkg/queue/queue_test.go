package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/queue"
)

type recordingPublisher struct {
	topics []string
	msgs   []*message.Message
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	r.topics = append(r.topics, topic)
	r.msgs = append(r.msgs, msgs...)

	return r.err
}

func eventsConfig() configs.EventsConfig {
	return configs.EventsConfig{
		Enabled: true,
		Upload:  configs.UploadEventsConfig{Published: true, Hidden: true},
	}
}

// TestEmitter_Toggles 测试只发布开启的主题.
func TestEmitter_Toggles(t *testing.T) {
	pub := &recordingPublisher{}
	e := queue.NewEmitter(pub, eventsConfig(), zerolog.Nop())
	ctx := context.Background()

	e.UploadCreated(ctx, queue.UploadCreatedPayload{Upload: queue.UploadRef{ID: 1}})
	e.UploadPublished(ctx, queue.UploadPublishedPayload{Upload: queue.UploadRef{ID: 1, PostID: 7, Size: 3}, PublicURL: "http://x/1"})
	e.UploadHidden(ctx, queue.UploadHiddenPayload{Upload: queue.UploadRef{ID: 1}})

	if len(pub.topics) != 2 || pub.topics[0] != queue.TopicUploadPublished || pub.topics[1] != queue.TopicUploadHidden {
		t.Fatalf("published topics = %v", pub.topics)
	}

	env, err := queue.ParseUploadPublished(pub.msgs[0])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if env.Header.Topic != queue.TopicUploadPublished || env.Header.Producer != configs.AppName {
		t.Errorf("header = %+v", env.Header)
	}

	if env.Payload.Upload.PostID != 7 || env.Payload.PublicURL != "http://x/1" {
		t.Errorf("payload = %+v", env.Payload)
	}

	hidden, err := queue.ParseUploadHidden(pub.msgs[1])
	if err != nil {
		t.Fatalf("parse hidden: %v", err)
	}

	if hidden.Header.Topic != queue.TopicUploadHidden || hidden.Payload.Upload.ID != 1 {
		t.Errorf("hidden envelope = %+v", hidden)
	}

	if pub.msgs[0].Metadata.Get(queue.MetaTopic) != queue.TopicUploadPublished {
		t.Errorf("metadata topic = %q", pub.msgs[0].Metadata.Get(queue.MetaTopic))
	}

	if pub.msgs[0].Metadata.Get(queue.MetaUploadID) != "1" || env.Header.UploadID != 1 {
		t.Errorf("upload id metadata = %q, header = %d", pub.msgs[0].Metadata.Get(queue.MetaUploadID), env.Header.UploadID)
	}
}

// TestEmitter_Disabled 测试总开关与 nil 发布器.
func TestEmitter_Disabled(t *testing.T) {
	pub := &recordingPublisher{}
	cfg := eventsConfig()
	cfg.Enabled = false

	queue.NewEmitter(pub, cfg, zerolog.Nop()).UploadPublished(context.Background(), queue.UploadPublishedPayload{})

	if len(pub.topics) != 0 {
		t.Errorf("disabled emitter published %v", pub.topics)
	}

	var nilEmitter *queue.Emitter
	nilEmitter.UploadHidden(context.Background(), queue.UploadHiddenPayload{})
}

// TestEmitter_PublishError 测试发布失败不会向上传播.
func TestEmitter_PublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	queue.NewEmitter(pub, eventsConfig(), zerolog.Nop()).UploadHidden(context.Background(), queue.UploadHiddenPayload{})

	if len(pub.topics) != 1 {
		t.Errorf("expected one publish attempt, got %d", len(pub.topics))
	}
}
