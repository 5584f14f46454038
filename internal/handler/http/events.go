package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
	"github.com/yuadm/first-step-greet/internal/pkg/sse"
)

const sseKeepaliveInterval = 30 * time.Second

type EventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
	userRepo   user.UserRepository
}

func NewEventsHandler(hub *sse.Hub, jwtService jwt.Service, userRepo user.UserRepository) EventsHandler {
	return &eventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

// Stream handles GET /events?token=. Admins receive organisation-wide
// summaries and the overdue digest; everyone else only learns which type
// changed and refetches with their own branch scope.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil || !u.IsActive {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	if !user.HasPermission(u.Role, user.PermissionDashboardView) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// digest stays nil for non-admins.
	var updates, digest chan sse.Event
	if u.IsAdmin() {
		var cleanupSummary, cleanupDigest func()
		updates, cleanupSummary = h.hub.Subscribe(dashboard.TopicComplianceSummary)
		digest, cleanupDigest = h.hub.Subscribe(dashboard.TopicComplianceDigest)
		defer cleanupSummary()
		defer cleanupDigest()
	} else {
		var cleanup func()
		updates, cleanup = h.hub.Subscribe(dashboard.TopicComplianceChanged)
		defer cleanup()
	}

	slog.Debug("SSE subscriber connected", "user_id", u.ID, "role", u.Role, "subscribers", h.hub.TotalSubscribers())

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", u.ID)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	write := func(event sse.Event) {
		data, err := json.Marshal(event.Data)
		if err != nil {
			slog.Warn("Failed to encode SSE event", "event", event.Event, "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
		flusher.Flush()
	}

	for {
		select {
		case event, ok := <-updates:
			if !ok {
				return
			}
			write(event)

		case event, ok := <-digest:
			if !ok {
				return
			}
			write(event)

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
