package replyflow

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/logger"
	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/internal/submission"
	"log/slog"
)

const (
	msgNotFound   = "Заявка не найдена в базе."
	msgSentFormat = "Оценка отправлена пользователю (id: %d)."
)

// Deliverer relays the evaluation text to the submitting user.
type Deliverer interface {
	DeliverEvaluation(ctx context.Context, sub *submission.Submission, evaluation string) error
}

// Service resolves submissions with admin evaluations. It implements the
// message router's Interceptor: an admin text claims precedence over every
// other route while a reply target is pending for that admin.
type Service struct {
	correlator *Correlator
	subs       submission.Repository
	deliverer  Deliverer
}

// NewService constructs the reply resolution service.
func NewService(correlator *Correlator, subs submission.Repository, deliverer Deliverer) *Service {
	return &Service{correlator: correlator, subs: subs, deliverer: deliverer}
}

// Correlator exposes the pending-target store for the callback handler.
func (s *Service) Correlator() *Correlator {
	return s.correlator
}

// Intercept consumes the pending reply target of the sender, if any, and
// treats the message text as the evaluation. The target is consumed even
// when resolution fails: a stale pointer must not swallow later messages.
func (s *Service) Intercept(c tele.Context) (bool, error) {
	adminID := c.Sender().ID
	submissionID, ok := s.correlator.Pop(adminID)
	if !ok {
		return false, nil
	}

	ctx := tghelpers.WithHandler(c, "replyflow")
	evaluation := c.Text()

	sub, err := s.subs.Get(ctx, submissionID)
	if errors.Is(err, submission.ErrNotFound) {
		logger.Warn(ctx, "replyflow", "resolve.not_found",
			slog.Int64("submission_id", submissionID),
			slog.Int64("admin_id", adminID),
		)
		return true, tghelpers.SendText(c, msgNotFound)
	}
	if err != nil {
		return true, fmt.Errorf("load submission %d: %w", submissionID, err)
	}

	if err := s.subs.MarkAnswered(ctx, submissionID, adminID, evaluation); err != nil {
		switch {
		case errors.Is(err, submission.ErrAlreadyAnswered):
			logger.Warn(ctx, "replyflow", "resolve.already_answered",
				slog.Int64("submission_id", submissionID),
				slog.Int64("admin_id", adminID),
			)
			return true, tghelpers.SendText(c, fmt.Sprintf("Заявка #%d уже обработана.", submissionID))
		case errors.Is(err, submission.ErrNotFound):
			return true, tghelpers.SendText(c, msgNotFound)
		default:
			return true, fmt.Errorf("resolve submission %d: %w", submissionID, err)
		}
	}

	if err := s.deliverer.DeliverEvaluation(ctx, sub, evaluation); err != nil {
		// The submission is resolved either way; the admin only learns that
		// the user did not get the message.
		logger.Warn(ctx, "replyflow", "resolve.delivery_failed",
			slog.Int64("submission_id", submissionID),
			slog.Int64("user_id", sub.UserID),
			slog.String("err", err.Error()),
		)
		return true, tghelpers.SendText(c, fmt.Sprintf("Не удалось отправить сообщение пользователю: %v", err))
	}

	logger.Info(ctx, "replyflow", "resolve.done",
		slog.String("status", "ok"),
		slog.Int64("submission_id", submissionID),
		slog.Int64("admin_id", adminID),
		slog.Int64("user_id", sub.UserID),
	)
	return true, tghelpers.SendText(c, fmt.Sprintf(msgSentFormat, sub.UserID))
}
