package usecase

import (
	"encoding/json"
	"fmt"

	"lumapost/domain/dto"
	"lumapost/domain/model"
)

// ParseTikTokWebhook folds the direct and inbox payload shapes into one event.
// The inbox shape applies only when content is a non-empty JSON string.
func ParseTikTokWebhook(body []byte) (*model.TikTokWebhookEvent, error) {
	var payload dto.TikTokWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedWebhookBody, err)
	}

	evt := &model.TikTokWebhookEvent{Event: payload.Event}
	if content, ok := inboxContent(payload.Content); ok {
		var c dto.TikTokWebhookContent
		if err := json.Unmarshal([]byte(content), &c); err != nil {
			return nil, fmt.Errorf("%w: content: %v", model.ErrMalformedWebhookBody, err)
		}
		evt.Inbox = true
		evt.PublishID = c.PublishID
		evt.Status = c.Status
		if evt.Status == "" {
			evt.Status = model.TikTokStatusProcessing
		}
		evt.ErrorMessage = c.ErrorMessage
		evt.VideoID = c.VideoID
		evt.ShareURL = c.ShareURL
		evt.UserID = payload.UserOpenID
	} else {
		evt.PublishID = payload.PublishID
		evt.Status = payload.Status
		evt.ErrorMessage = payload.ErrorMessage
		evt.VideoID = payload.VideoID
		evt.ShareURL = payload.ShareURL
		evt.UserID = payload.UserID
		if evt.UserID == "" {
			evt.UserID = payload.UserOpenID
		}
	}

	if evt.PublishID == "" {
		return nil, model.ErrMissingPublishID
	}
	evt.Status = NormalizeWebhookStatus(evt.Event, evt.Status)
	return evt, nil
}

// inboxContent returns content when it is a non-empty JSON string.
func inboxContent(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// NormalizeWebhookStatus lets the event type override the raw status.
func NormalizeWebhookStatus(event, status string) string {
	switch event {
	case model.TikTokEventInboxDelivered:
		return model.TikTokStatusProcessing
	case model.TikTokEventPublishSuccess, model.TikTokEventPublishCompleted:
		return model.TikTokStatusPublished
	case model.TikTokEventPublishFailed:
		return model.TikTokStatusFailed
	}
	return status
}
