package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/logger"
	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/internal/settings"
	"log/slog"
)

const (
	msgAdminRegistered  = "Вы зарегистрированы как администратор (владелец). Теперь выполните /set_manager_chat в чате менеджеров."
	msgSetReviewsUsage  = "Использование: /set_reviews <ссылка>"
	msgReviewsLinkSaved = "Ссылка на отзывы сохранена."
	msgSettingFailed    = "Не удалось сохранить настройку. Попробуйте ещё раз."
)

// RegisterAdmin stores the caller as the owner and seeds the default support
// handle. Whoever runs the command first becomes the owner; rerunning it
// replaces the stored identity.
func (h *Handlers) RegisterAdmin(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "register_admin")
	ownerID := c.Sender().ID

	if err := h.settings.Set(ctx, settings.KeyOwnerID, strconv.FormatInt(ownerID, 10)); err != nil {
		return h.settingFailed(c, err)
	}
	if err := h.settings.Set(ctx, settings.KeySupportUsername, h.defaultSupport); err != nil {
		return h.settingFailed(c, err)
	}

	logger.Info(ctx, "handlers", "admin.registered",
		slog.String("status", "ok"),
		slog.Int64("owner_id", ownerID),
	)
	return tghelpers.SendText(c, msgAdminRegistered)
}

// SetManagerChat stores the chat the command was issued in as the routing
// target for new submissions.
func (h *Handlers) SetManagerChat(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "set_manager_chat")
	chatID := c.Chat().ID

	if err := h.settings.Set(ctx, settings.KeyManagerChatID, strconv.FormatInt(chatID, 10)); err != nil {
		return h.settingFailed(c, err)
	}

	logger.Info(ctx, "handlers", "manager_chat.set",
		slog.String("status", "ok"),
		slog.Int64("manager_chat_id", chatID),
	)
	return tghelpers.SendText(c, fmt.Sprintf("Менеджерский чат сохранён: %d", chatID))
}

// SetReviews stores the reviews link given as the command argument.
func (h *Handlers) SetReviews(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "set_reviews")

	link := strings.TrimSpace(c.Message().Payload)
	if link == "" {
		return tghelpers.SendText(c, msgSetReviewsUsage)
	}

	if err := h.settings.Set(ctx, settings.KeyReviewsLink, link); err != nil {
		return h.settingFailed(c, err)
	}
	return tghelpers.SendText(c, msgReviewsLinkSaved)
}

func (h *Handlers) settingFailed(c tele.Context, err error) error {
	if sendErr := tghelpers.SendText(c, msgSettingFailed); sendErr != nil {
		return sendErr
	}
	return err
}
