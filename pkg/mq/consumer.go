package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

type CommentEventHandler interface {
	HandleCommentEvent(ctx context.Context, event *CommentEvent) error
}

type LikeEventHandler interface {
	HandleLikeEvent(ctx context.Context, event *LikeEvent) error
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Bound the number of unacked deliveries per consumer.
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
	}, nil
}

func (c *Consumer) ConsumeCommentEvents(ctx context.Context, handler CommentEventHandler) error {
	msgs, err := c.channel.Consume(
		CommentEventQueue,
		"",    // consumer
		false, // auto-ack, acked manually below
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Info("Comment event consumer context cancelled")
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Info("Comment event consumer channel closed")
					return
				}

				var event CommentEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					hlog.Errorf("Failed to unmarshal comment event: %v", err)
					d.Nack(false, false) // poison message, drop it
					continue
				}

				if err := handler.HandleCommentEvent(ctx, &event); err != nil {
					hlog.Errorf("Failed to handle comment event: %v", err)
					d.Nack(false, true) // requeue for retry
					continue
				}

				d.Ack(false)
			}
		}
	}()

	return nil
}

func (c *Consumer) ConsumeLikeEvents(ctx context.Context, handler LikeEventHandler) error {
	msgs, err := c.channel.Consume(
		LikeEventQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Info("Like event consumer context cancelled")
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Info("Like event consumer channel closed")
					return
				}

				var event LikeEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					hlog.Errorf("Failed to unmarshal like event: %v", err)
					d.Nack(false, false)
					continue
				}

				if err := handler.HandleLikeEvent(ctx, &event); err != nil {
					hlog.Errorf("Failed to handle like event: %v", err)
					d.Nack(false, true)
					continue
				}

				d.Ack(false)
			}
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
