// Package notify decides where a new submission is announced and renders
// the staff- and user-facing messages around the evaluation flow.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/logger"
	"github.com/skupfast/skupbot/core/telegram/format"
	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/core/telegram/keyboard"
	"github.com/skupfast/skupbot/internal/settings"
	"github.com/skupfast/skupbot/internal/submission"
	"log/slog"
)

const (
	// ReplyCallbackKey identifies the inline "answer the client" control.
	ReplyCallbackKey = "reply"

	msgManagerChatUnset = "Заявка получена, но менеджерский чат не настроен. Пожалуйста, уведомите администратора."
)

// Sender is the outbound half of the bot transport.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier routes submissions and evaluations to their targets.
type Notifier struct {
	bot      Sender
	settings settings.Repository
}

// NewNotifier constructs the routing/notification layer. The sender is bound
// later, once the bot transport exists.
func NewNotifier(cfg settings.Repository) *Notifier {
	return &Notifier{settings: cfg}
}

// Bind attaches the outbound transport. Called from the bot start hook,
// before any update is dispatched.
func (n *Notifier) Bind(bot Sender) {
	n.bot = bot
}

// SubmissionText renders the staff-facing announcement for a submission.
// User-supplied values are escaped for the HTML parse mode.
func SubmissionText(sub *submission.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📥 %s\n\n", format.Bold(fmt.Sprintf("Новая заявка #%d", sub.ID)))
	fmt.Fprintf(&b, "%s %s (id: %s)\n", format.Bold("Пользователь:"), format.EscapeHTML(sub.UserName), format.CodeInt64(sub.UserID))
	fmt.Fprintf(&b, "%s %s\n", format.Bold("Название:"), format.EscapeHTML(sub.Name))
	fmt.Fprintf(&b, "%s %s\n", format.Bold("Количество:"), format.EscapeHTML(sub.Quantity))
	fmt.Fprintf(&b, "%s %s\n", format.Bold("Ссылка:"), format.EscapeHTML(sub.URL))
	fmt.Fprintf(&b, "%s %s\n", format.Bold("Распакован:"), format.EscapeHTML(sub.Unpacked))
	fmt.Fprintf(&b, "%s %s\n", format.Bold("Город:"), format.EscapeHTML(sub.City))
	return b.String()
}

// ReplyMarkup builds the inline control bound to the submission id.
func ReplyMarkup(submissionID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   "Ответить клиенту",
		Unique: ReplyCallbackKey,
		Data:   strconv.FormatInt(submissionID, 10),
	}})
}

// EvaluationText renders the message relayed to the submitting user.
func EvaluationText(sub *submission.Submission, evaluation string) string {
	return fmt.Sprintf("Оценка товара: %s\n\nНазвание: %s\nЕсли согласны — напишите менеджеру.", evaluation, sub.Name)
}

// AnnounceSubmission delivers a new submission to the manager chat, or falls
// back to the owner with a notice to the user when no manager chat is set.
// A missing manager chat and a missing owner both degrade to best effort;
// the submission stays accepted either way.
func (n *Notifier) AnnounceSubmission(ctx context.Context, c tele.Context, sub *submission.Submission) error {
	text := SubmissionText(sub)

	managerChat, err := n.settings.ManagerChatID(ctx)
	if err == nil {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: ReplyMarkup(sub.ID)}
		if _, sendErr := n.bot.Send(tele.ChatID(managerChat), text, opts); sendErr != nil {
			return fmt.Errorf("send to manager chat %d: %w", managerChat, sendErr)
		}
		logger.Info(ctx, "notify", "submission.routed",
			slog.String("status", "ok"),
			slog.Int64("submission_id", sub.ID),
			slog.Int64("manager_chat_id", managerChat),
		)
		return nil
	}
	if !errors.Is(err, settings.ErrNotFound) {
		return fmt.Errorf("resolve manager chat: %w", err)
	}

	// No manager chat configured: tell the user and try the owner fallback.
	if notifyErr := tghelpers.SendText(c, msgManagerChatUnset); notifyErr != nil {
		logger.Warn(ctx, "notify", "submission.user_notice_failed",
			slog.Int64("submission_id", sub.ID),
			slog.String("err", notifyErr.Error()),
		)
	}

	ownerID, err := n.settings.OwnerID(ctx)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			return fmt.Errorf("resolve owner: %w", err)
		}
		logger.Warn(ctx, "notify", "submission.unrouted",
			slog.Int64("submission_id", sub.ID),
		)
		return nil
	}

	fallback := fmt.Sprintf("Новая заявка #%d (менеджерский чат не настроен):\n%s", sub.ID, text)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if _, sendErr := n.bot.Send(tele.ChatID(ownerID), fallback, opts); sendErr != nil {
		return fmt.Errorf("send owner fallback to %d: %w", ownerID, sendErr)
	}
	logger.Info(ctx, "notify", "submission.routed",
		slog.String("status", "ok"),
		slog.Int64("submission_id", sub.ID),
		slog.Int64("owner_id", ownerID),
	)
	return nil
}

// DeliverEvaluation sends the admin's evaluation to the submitting user.
func (n *Notifier) DeliverEvaluation(ctx context.Context, sub *submission.Submission, evaluation string) error {
	if _, err := n.bot.Send(tele.ChatID(sub.UserID), EvaluationText(sub, evaluation)); err != nil {
		return fmt.Errorf("send evaluation to user %d: %w", sub.UserID, err)
	}
	logger.Info(ctx, "notify", "evaluation.delivered",
		slog.String("status", "ok"),
		slog.Int64("submission_id", sub.ID),
		slog.Int64("user_id", sub.UserID),
	)
	return nil
}
