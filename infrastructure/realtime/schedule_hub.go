package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"lumapost/domain/model"

	"github.com/gin-gonic/gin"
)

const scheduleStatusEvent = "schedule_status"

// ScheduleStatusEvent is the SSE payload for a schedule status change.
type ScheduleStatusEvent struct {
	Type       string  `json:"type"`
	ScheduleID string  `json:"schedule_id"`
	PublishID  string  `json:"publish_id"`
	Previous   string  `json:"previous_status"`
	Status     string  `json:"status"`
	TikTokURL  *string `json:"tiktok_url,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// Hub maintains per-user subscribers listening for schedule status events.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan ScheduleStatusEvent]struct{}
}

func NewScheduleHub() *Hub {
	return &Hub{users: make(map[string]map[chan ScheduleStatusEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan ScheduleStatusEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + scheduleStatusEvent + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan ScheduleStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan ScheduleStatusEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan ScheduleStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Subscribers returns how many streams are open for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// BroadcastScheduleStatus sends to every stream of the schedule's owner.
// Slow subscribers miss events rather than block the webhook.
func (h *Hub) BroadcastScheduleStatus(change *model.ScheduleStatusChange) {
	if change == nil || change.UserID == "" {
		return
	}
	evt := ScheduleStatusEvent{
		Type:       scheduleStatusEvent,
		ScheduleID: change.ScheduleID,
		PublishID:  change.PublishID,
		Previous:   string(change.Previous),
		Status:     string(change.Status),
		TikTokURL:  change.TikTokURL,
		Error:      change.LastError,
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[change.UserID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
