package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelGenerationEvents = "generation_events"
)

// 生成阶段常量
const (
	StepQueued     = "queued"
	StepGenerating = "generating"
	StepSaving     = "saving"
	StepDone       = "done"
	StepFailed     = "failed"
)

// 阶段对应的消息
var StepMessages = map[string]string{
	StepQueued:     "请求已接收",
	StepGenerating: "正在生成内容",
	StepSaving:     "正在保存结果",
	StepDone:       "生成完成",
	StepFailed:     "生成失败",
}

// GenerationEvent 生成过程事件
type GenerationEvent struct {
	Type        string `json:"type"`
	UserID      int64  `json:"user_id"`
	ContentID   int64  `json:"content_id,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Step        string `json:"step"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent 发布生成事件
func (p *Publisher) PublishEvent(ctx context.Context, event *GenerationEvent) error {
	event.Type = "generation_event"

	if event.Message == "" && event.Step != "" {
		if message, ok := StepMessages[event.Step]; ok {
			event.Message = message
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	return p.client.Publish(ctx, ChannelGenerationEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅生成事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*GenerationEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelGenerationEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event GenerationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
