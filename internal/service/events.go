package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 互动事件类型
const (
	EventClap           = "clap"
	EventArticleTrashed = "article.trashed"
)

// EngagementEvent 是发往消息队列的互动/风控事件
type EngagementEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	ArticleID  uint      `json:"article_id"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 将互动事件发布到 RabbitMQ。
// 队列未配置时 publisher 为 nil，发布动作直接跳过；
// 发布失败只记日志，不影响主流程。
type EventPublisher struct {
	ch    *amqp.Channel
	queue string
}

// SetupEventPublisher 建立 RabbitMQ 连接并声明队列。
// url 为空时返回 nil publisher，表示未启用。
func SetupEventPublisher(url, queue string) (*EventPublisher, *amqp.Connection, error) {
	if url == "" {
		return nil, nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, err
	}

	return &EventPublisher{ch: ch, queue: queue}, conn, nil
}

// Publish 发布一条事件，尽力而为
func (p *EventPublisher) Publish(evt EngagementEvent) {
	if p == nil || p.ch == nil {
		return
	}

	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}); err != nil {
		log.Printf("publish engagement event failed: %v", err)
	}
}
