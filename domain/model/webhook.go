package model

// TikTok publish event types.
const (
	TikTokEventInboxDelivered   = "post.publish.inbox_delivered"
	TikTokEventPublishSuccess   = "post.publish.success"
	TikTokEventPublishComplete  = "post.publish.complete"
	TikTokEventPublishCompleted = "post.publish.completed"
	TikTokEventPublishFailed    = "post.publish.failed"
)

// Normalized provider statuses.
const (
	TikTokStatusProcessing = "PROCESSING"
	TikTokStatusPublished  = "PUBLISHED"
	TikTokStatusFailed     = "FAILED"
)

// TikTokWebhookEvent is a publish-status notification after both payload
// shapes have been folded into one.
type TikTokWebhookEvent struct {
	Event        string `json:"event,omitempty"`
	PublishID    string `json:"publish_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	ShareURL     string `json:"share_url,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Inbox        bool   `json:"-"`
}

// IsImmediateSuccess reports whether the event announces an immediate publish,
// which can legitimately arrive for posts never tracked as schedules.
func (e *TikTokWebhookEvent) IsImmediateSuccess() bool {
	switch e.Event {
	case TikTokEventPublishComplete, TikTokEventPublishCompleted, TikTokEventPublishSuccess:
		return true
	}
	return false
}

// LookupStrategy names the step of the lookup cascade that found a schedule.
type LookupStrategy string

const (
	LookupExact         LookupStrategy = "exact"
	LookupFuzzySuffix   LookupStrategy = "fuzzy_suffix"
	LookupFuzzyPrefix   LookupStrategy = "fuzzy_prefix"
	LookupRecentPending LookupStrategy = "recent_pending"
)
