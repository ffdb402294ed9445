package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Producer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
	}

	if err := producer.setupTopology(); err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return producer, nil
}

func (p *Producer) setupTopology() error {
	exchanges := []string{CommentEventExchange, LikeEventExchange, NotificationEventExchange}
	for _, exchange := range exchanges {
		err := p.channel.ExchangeDeclare(
			exchange,
			"direct",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}

	bindings := map[string]string{
		CommentEventQueue:      CommentEventExchange,
		LikeEventQueue:         LikeEventExchange,
		NotificationEventQueue: NotificationEventExchange,
	}
	for queue, exchange := range bindings {
		_, err := p.channel.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
		if err := p.channel.QueueBind(queue, "", exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (p *Producer) publish(ctx context.Context, exchange string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		exchange,
		"",
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", exchange, err)
	}
	return nil
}

func (p *Producer) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	if err := p.publish(ctx, CommentEventExchange, event); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "Published comment event: type=%s publication=%d event_id=%s",
		event.Type, event.PublicationID, event.EventID)
	return nil
}

func (p *Producer) PublishLikeEvent(ctx context.Context, event *LikeEvent) error {
	if err := p.publish(ctx, LikeEventExchange, event); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "Published like event: %+v", event)
	return nil
}

func (p *Producer) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	if err := p.publish(ctx, NotificationEventExchange, event); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "Published notification event: receiver=%d type=%s", event.ReceiverID, event.Type)
	return nil
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
