package usecase

import (
	"testing"

	"lumapost/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTikTokWebhook_DirectShape(t *testing.T) {
	body := `{"event":"post.publish.success","publish_id":"v_pub_url~v2.123","status":"PROCESSING",
		"video_id":"7300","share_url":"https://www.tiktok.com/@luma/video/7300","user_openid":"open-1"}`

	evt, err := ParseTikTokWebhook([]byte(body))
	require.NoError(t, err)
	assert.False(t, evt.Inbox)
	assert.Equal(t, "v_pub_url~v2.123", evt.PublishID)
	assert.Equal(t, model.TikTokStatusPublished, evt.Status)
	assert.Equal(t, "7300", evt.VideoID)
	assert.Equal(t, "open-1", evt.UserID)
}

func TestParseTikTokWebhook_DirectPrefersUserID(t *testing.T) {
	evt, err := ParseTikTokWebhook([]byte(`{"publish_id":"p","status":"FAILED","user_id":"u-1","user_openid":"open-1","error_message":"boom"}`))
	require.NoError(t, err)
	assert.Equal(t, "u-1", evt.UserID)
	assert.Equal(t, model.TikTokStatusFailed, evt.Status)
	assert.Equal(t, "boom", evt.ErrorMessage)
}

func TestParseTikTokWebhook_InboxShape(t *testing.T) {
	body := `{"client_key":"ck","event":"post.publish.inbox_delivered","create_time":1715000000,
		"user_openid":"open-2","content":"{\"publish_id\":\"v_inbox_file~v2.9\",\"publish_type\":\"INBOX_SHARE\"}"}`

	evt, err := ParseTikTokWebhook([]byte(body))
	require.NoError(t, err)
	assert.True(t, evt.Inbox)
	assert.Equal(t, "v_inbox_file~v2.9", evt.PublishID)
	assert.Equal(t, model.TikTokStatusProcessing, evt.Status)
	assert.Equal(t, "open-2", evt.UserID)
}

func TestParseTikTokWebhook_InboxStatusDefaultsToProcessing(t *testing.T) {
	body := `{"event":"post.publish.unknown","user_openid":"open-2","content":"{\"publish_id\":\"p-1\"}"}`
	evt, err := ParseTikTokWebhook([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, model.TikTokStatusProcessing, evt.Status)
}

func TestParseTikTokWebhook_InboxEventOverridesContentStatus(t *testing.T) {
	body := `{"event":"post.publish.failed","user_openid":"open-2","content":"{\"publish_id\":\"p-1\",\"status\":\"PROCESSING\",\"error_message\":\"rejected\"}"}`
	evt, err := ParseTikTokWebhook([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, model.TikTokStatusFailed, evt.Status)
	assert.Equal(t, "rejected", evt.ErrorMessage)
}

func TestParseTikTokWebhook_EmptyOrObjectContentUsesDirectShape(t *testing.T) {
	evt, err := ParseTikTokWebhook([]byte(`{"content":"","publish_id":"direct-1","status":"PUBLISHED"}`))
	require.NoError(t, err)
	assert.False(t, evt.Inbox)
	assert.Equal(t, "direct-1", evt.PublishID)

	evt, err = ParseTikTokWebhook([]byte(`{"content":{"publish_id":"nested"},"publish_id":"direct-2"}`))
	require.NoError(t, err)
	assert.Equal(t, "direct-2", evt.PublishID)
}

func TestParseTikTokWebhook_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"not json", `publish_id=1`, model.ErrMalformedWebhookBody},
		{"array body", `[1,2]`, model.ErrMalformedWebhookBody},
		{"content not json", `{"content":"{not json","user_openid":"o"}`, model.ErrMalformedWebhookBody},
		{"missing publish id direct", `{"event":"post.publish.success","status":"PUBLISHED"}`, model.ErrMissingPublishID},
		{"missing publish id inbox", `{"content":"{\"status\":\"PUBLISHED\"}"}`, model.ErrMissingPublishID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := ParseTikTokWebhook([]byte(tt.body))
			assert.Nil(t, evt)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeWebhookStatus(t *testing.T) {
	tests := []struct {
		event, status, want string
	}{
		{model.TikTokEventInboxDelivered, "PUBLISHED", model.TikTokStatusProcessing},
		{model.TikTokEventPublishSuccess, "", model.TikTokStatusPublished},
		{model.TikTokEventPublishCompleted, "PROCESSING", model.TikTokStatusPublished},
		{model.TikTokEventPublishFailed, "PUBLISHED", model.TikTokStatusFailed},
		{model.TikTokEventPublishComplete, "PROCESSING", "PROCESSING"},
		{"post.publish.publicly_available", "SOMETHING", "SOMETHING"},
		{"", "FAILED", "FAILED"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWebhookStatus(tt.event, tt.status), "event %q status %q", tt.event, tt.status)
	}
}
