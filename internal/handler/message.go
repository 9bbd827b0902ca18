package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/repository"
)

// MessageStore is implemented by repository.MessageRepo.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListThread(ctx context.Context, key model.ThreadKey) ([]model.Message, error)
}

// UserLookup is implemented by repository.UserRepo.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// MessageHandler serves the conversation between the caller and a peer.
// A thread contains messages in both directions.
type MessageHandler struct {
	Messages MessageStore
	Users    UserLookup
}

func NewMessageHandler(messages MessageStore, users UserLookup) *MessageHandler {
	if messages == nil || users == nil {
		panic("nil repository passed to NewMessageHandler")
	}
	return &MessageHandler{Messages: messages, Users: users}
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// ListThread handles GET /v1/threads/:peer_id/messages, oldest first.
func (h *MessageHandler) ListThread(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	peerID, ok := parseIDParam(c, "peer_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid peer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Messages.ListThread(ctx, model.NewThreadKey(userID, peerID))
	if err != nil {
		c.Logger().Errorf("list thread: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch messages"})
	}
	return c.JSON(http.StatusOK, newList(items))
}

// SendMessage handles POST /v1/threads/:peer_id/messages.  Blank content
// is rejected with 400 and nothing is stored.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	peerID, ok := parseIDParam(c, "peer_id")
	if !ok || peerID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid peer id"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, peerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "peer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	m := model.Message{SenderID: userID, ReceiverID: peerID, Content: req.Content}
	if err := h.Messages.Create(ctx, &m); err != nil {
		c.Logger().Errorf("create message: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}
	return c.JSON(http.StatusCreated, m)
}
