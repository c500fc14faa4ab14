package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

const statusContentType = "application/json"

// ScheduleStatusSender puts schedule status changes on a Service Bus queue or topic.
type ScheduleStatusSender struct {
	client *azservicebus.Client
	queue  string
}

func NewScheduleStatusSender(client *azservicebus.Client, queue string) repository.IScheduleEventPublisher {
	return &ScheduleStatusSender{client: client, queue: queue}
}

func (s *ScheduleStatusSender) PublishScheduleStatus(ctx context.Context, change *model.ScheduleStatusChange) error {
	if s.client == nil {
		return errors.New("service bus client not initialized")
	}
	msg, err := newStatusMessage(change)
	if err != nil {
		return err
	}
	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("send schedule status: %w", err)
	}
	return nil
}

func newStatusMessage(change *model.ScheduleStatusChange) (*azservicebus.Message, error) {
	if change == nil {
		return nil, errors.New("nil status change")
	}
	body, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode status change: %w", err)
	}
	contentType := statusContentType
	subject := string(change.Status)
	// stable per (schedule, status, instant) for duplicate detection
	messageID := change.ScheduleID + ":" + subject + ":" + strconv.FormatInt(change.ChangedAt.UnixMilli(), 10)
	partitionKey := change.ScheduleID
	return &azservicebus.Message{
		Body:         body,
		ContentType:  &contentType,
		Subject:      &subject,
		MessageID:    &messageID,
		PartitionKey: &partitionKey,
		ApplicationProperties: map[string]any{
			"schedule_id":     change.ScheduleID,
			"user_id":         change.UserID,
			"previous_status": string(change.Previous),
		},
	}, nil
}
