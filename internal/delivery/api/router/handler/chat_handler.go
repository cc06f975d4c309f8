package handler

import (
	"log/slog"
	"net/http"

	"foodbridge/internal/delivery/api/response"
	"foodbridge/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ChatHandlerParams holds dependencies for ChatHandler, injected by Fx.
type ChatHandlerParams struct {
	fx.In

	ChatUC usecase.ChatUsecase
	Logger *slog.Logger
}

// ChatHandler serves the restaurant to NGO message threads.
type ChatHandler struct {
	chatUC usecase.ChatUsecase
	logger *slog.Logger
}

func NewChatHandler(params ChatHandlerParams) *ChatHandler {
	return &ChatHandler{
		chatUC: params.ChatUC,
		logger: params.Logger,
	}
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"max=4000"`
}

type ChatEnvelope struct {
	Chat *ChatResponse `json:"chat"`
}

type ChatsEnvelope struct {
	Chats []*ChatResponse `json:"chats"`
}

// MyChats handles GET /chats/my-chats.
func (h *ChatHandler) MyChats(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return done(err)
	}

	details, err := h.chatUC.ListThreads(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	chats := make([]*ChatResponse, 0, len(details))
	for _, detail := range details {
		chats = append(chats, toChatResponse(detail))
	}

	return response.Success(c, http.StatusOK, &ChatsEnvelope{Chats: chats})
}

// GetChat handles GET /chats/:chatId.
func (h *ChatHandler) GetChat(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return done(err)
	}
	chatID, err := pathID(c, "chatId")
	if err != nil {
		return done(err)
	}

	detail, err := h.chatUC.GetThread(c.Request().Context(), actor, chatID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &ChatEnvelope{Chat: toChatResponse(detail)})
}

// MarkRead handles POST /chats/:chatId/mark-read.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return done(err)
	}
	chatID, err := pathID(c, "chatId")
	if err != nil {
		return done(err)
	}

	if err := h.chatUC.MarkRead(c.Request().Context(), actor, chatID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &MessageResponse{Message: "Chat marked as read"})
}

// SendMessage handles POST /chats/:chatId/message.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return done(err)
	}
	chatID, err := pathID(c, "chatId")
	if err != nil {
		return done(err)
	}

	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	detail, err := h.chatUC.AppendMessage(c.Request().Context(), actor, chatID, req.Message)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &ChatEnvelope{Chat: toChatResponse(detail)})
}
