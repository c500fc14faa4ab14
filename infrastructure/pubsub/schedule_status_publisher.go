package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// ScheduleStatusPublisher emits schedule status changes to a Pub/Sub topic.
type ScheduleStatusPublisher struct {
	client    *pubsub.Client
	topicName string

	once  sync.Once
	topic *pubsub.Topic
	err   error
}

func NewScheduleStatusPublisher(client *pubsub.Client, topicName string) repository.IScheduleEventPublisher {
	return &ScheduleStatusPublisher{client: client, topicName: topicName}
}

// ensureTopic resolves the topic once, creating it when missing.
func (p *ScheduleStatusPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.once.Do(func() {
		topic := p.client.Topic(p.topicName)
		exists, err := topic.Exists(ctx)
		if err != nil {
			p.err = err
			return
		}
		if !exists {
			logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
			topic, err = p.client.CreateTopic(ctx, p.topicName)
			if err != nil {
				p.err = err
				return
			}
		}
		topic.EnableMessageOrdering = true
		p.topic = topic
	})
	return p.topic, p.err
}

func (p *ScheduleStatusPublisher) PublishScheduleStatus(ctx context.Context, change *model.ScheduleStatusChange) error {
	if p.client == nil {
		return errors.New("pubsub client not initialized")
	}
	msg, err := newStatusMessage(change)
	if err != nil {
		return err
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return fmt.Errorf("resolve topic %s: %w", p.topicName, err)
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		// a failed ordered publish pauses its key until resumed
		topic.ResumePublish(msg.OrderingKey)
		return fmt.Errorf("publish schedule status: %w", err)
	}
	logger.GetLogger().
		WithField("server_id", serverID).
		WithField("schedule_id", change.ScheduleID).
		Debug("Schedule status published")
	return nil
}

func newStatusMessage(change *model.ScheduleStatusChange) (*pubsub.Message, error) {
	if change == nil {
		return nil, errors.New("nil status change")
	}
	data, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode status change: %w", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"schedule_id": change.ScheduleID,
			"user_id":     change.UserID,
			"status":      string(change.Status),
		},
		OrderingKey: change.ScheduleID,
	}, nil
}
