package handlers

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/logger"
	"github.com/skupfast/skupbot/core/telegram/callbacks"
	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/internal/settings"
	"log/slog"
)

const alertManagerChatOnly = "Эта кнопка доступна только в менеджерском чате."

// ReplyCallback handles the "answer the client" button under a submission
// announcement. Only presses inside the configured manager chat are honored;
// a valid press arms the reply correlator for the pressing admin.
func (h *Handlers) ReplyCallback(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "callback.reply")

	submissionID, err := callbacks.PayloadInt64(c)
	if err != nil {
		logger.Warn(ctx, "handlers", "reply.bad_payload",
			slog.String("err", err.Error()),
		)
		return c.Respond()
	}

	managerChat, err := h.settings.ManagerChatID(ctx)
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		return fmt.Errorf("resolve manager chat: %w", err)
	}
	if err != nil || c.Chat().ID != managerChat {
		return c.Respond(&tele.CallbackResponse{Text: alertManagerChatOnly, ShowAlert: true})
	}

	adminID := c.Sender().ID
	h.replies.Begin(adminID, submissionID)
	logger.Info(ctx, "handlers", "reply.armed",
		slog.String("status", "ok"),
		slog.Int64("submission_id", submissionID),
		slog.Int64("admin_id", adminID),
	)

	prompt := fmt.Sprintf("Вы отвечаете на заявку #%d. Введите текст оценки для клиента (например: 1200₽).", submissionID)
	if err := tghelpers.SendText(c, prompt); err != nil {
		return err
	}
	return c.Respond()
}
