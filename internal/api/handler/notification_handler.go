package handler

import (
	"log/slog"
	"net/http"

	"code_practice/internal/api/middleware"
	"code_practice/internal/app/realtime"
	"code_practice/internal/app/service"
	"code_practice/internal/common"
	"code_practice/internal/common/security"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	users               middleware.UserLoader
	hub                 *realtime.Hub
	upgrader            websocket.Upgrader
}

func NewNotificationHandler(ns *service.NotificationService, users middleware.UserLoader, hub *realtime.Hub, allowedOrigins []string) *NotificationHandler {
	h := &NotificationHandler{notificationService: ns, users: users, hub: hub}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// RegisterRoutes mounts the authenticated routes. The websocket route is
// mounted separately because browsers cannot set an Authorization header on it.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Put("/read-all", h.markAllRead)
	r.Put("/{notificationID}/read", h.markRead)
	r.Delete("/{notificationID}", h.delete)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.notificationService.List(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.UnreadCount(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	err := h.notificationService.MarkRead(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "notificationID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAllRead(r.Context(), middleware.CallerFromContext(r.Context())); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "All notifications marked as read")
}

func (h *NotificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.notificationService.Delete(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "notificationID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Notification deleted")
}

// ServeWS upgrades to a websocket that receives unread badge updates.
// The token comes from the "token" query parameter.
func (h *NotificationHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := security.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
		return
	}
	user, err := h.users.Authenticate(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	h.hub.Register(user.ID, conn)

	ctx := middleware.WithUser(r.Context(), user)
	if count, err := h.notificationService.UnreadCount(ctx, middleware.CallerFromContext(ctx)); err == nil {
		h.hub.PushUnread(user.ID, count)
	}
}
