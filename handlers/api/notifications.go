package api

import (
	"bufio"
	"encoding/json"
	"sync"
	"time"

	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Notification represents a real-time notification
type Notification struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"` // "new_email", "metadata_change"
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Time    time.Time              `json:"time"`
}

// NotificationHandler pushes new-mail and metadata events to connected
// clients over SSE or WebSocket. The background poller feeds it through the
// Notifier interface.
type NotificationHandler struct {
	store       *session.Store
	subscribers map[string]chan Notification
	mu          sync.RWMutex
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store *session.Store) *NotificationHandler {
	return &NotificationHandler{
		store:       store,
		subscribers: make(map[string]chan Notification),
	}
}

// HandleSSE handles Server-Sent Events for real-time notifications
func (h *NotificationHandler) HandleSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	subscriberID := uuid.New().String()
	messageChan := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[subscriberID] = messageChan
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subscribers, subscriberID)
		close(messageChan)
		h.mu.Unlock()

		utils.Log.Info("SSE subscriber disconnected: %s", subscriberID)
	}()

	utils.Log.Info("SSE subscriber connected: %s", subscriberID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// Keep-alive ticker
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case notification := <-messageChan:
				data, _ := json.Marshal(notification)
				w.WriteString("data: " + string(data) + "\n\n")
				w.Flush()

			case <-ticker.C:
				w.WriteString(": keepalive\n\n")
				w.Flush()

			case <-c.Context().Done():
				return
			}
		}
	}))

	return nil
}

// HandleWebSocket handles WebSocket connections for real-time notifications
func (h *NotificationHandler) HandleWebSocket(c *websocket.Conn) {
	subscriberID := uuid.New().String()
	messageChan := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[subscriberID] = messageChan
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subscribers, subscriberID)
		close(messageChan)
		h.mu.Unlock()

		c.Close()
		utils.Log.Info("WebSocket subscriber disconnected: %s", subscriberID)
	}()

	utils.Log.Info("WebSocket subscriber connected: %s", subscriberID)

	for notification := range messageChan {
		if err := c.WriteJSON(notification); err != nil {
			utils.Log.Error("Failed to send WebSocket notification: %v", err)
			break
		}
	}
}

// BroadcastNotification sends a notification to all subscribers
func (h *NotificationHandler) BroadcastNotification(notification Notification) {
	notification.ID = uuid.New().String()
	notification.Time = time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- notification:
		default:
			// Channel full, skip this subscriber
			utils.Log.Warn("Notification channel full for subscriber %s", subscriberID)
		}
	}
}

// NotifyNewEmail sends a notification for a new email
func (h *NotificationHandler) NotifyNewEmail(from, subject string) {
	h.BroadcastNotification(Notification{
		Type:    "new_email",
		Message: "New email received",
		Data: map[string]interface{}{
			"from":    from,
			"subject": subject,
		},
	})
}

// NotifyMetadataChange sends a notification when a message's flags change
func (h *NotificationHandler) NotifyMetadataChange(emailID, change string) {
	h.BroadcastNotification(Notification{
		Type:    "metadata_change",
		Message: "Email updated",
		Data: map[string]interface{}{
			"email_id": emailID,
			"change":   change,
		},
	})
}
