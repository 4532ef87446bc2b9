package intake

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/logger"
	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/core/telegram/keyboard"
	"github.com/skupfast/skupbot/core/telegram/state"
	"github.com/skupfast/skupbot/internal/submission"
	"log/slog"
)

const (
	msgThanks = "Благодарим вас за анкету!\nМенеджер проверит и даст оценку вашего товара в течение 15 минут."
	// Shown when the submission row could not be written; the dialogue data
	// is discarded so the user can retry from a clean session.
	msgSaveFailed = "Не удалось сохранить заявку. Пожалуйста, попробуйте ещё раз позже."
)

// Announcer delivers a freshly created submission to the staff side.
type Announcer interface {
	AnnounceSubmission(ctx context.Context, c tele.Context, sub *submission.Submission) error
}

// Engine walks a user through the intake form, one field per message.
type Engine struct {
	sessions  state.Manager
	subs      submission.Repository
	announcer Announcer
}

// NewEngine constructs the intake dialogue engine.
func NewEngine(sessions state.Manager, subs submission.Repository, announcer Announcer) *Engine {
	return &Engine{sessions: sessions, subs: subs, announcer: announcer}
}

// RegisterStages wires a handler for every dialogue stage into the FSM table.
func (e *Engine) RegisterStages() {
	for _, stage := range Stages() {
		state.RegisterHandler(stage, e.stageHandler(stage))
	}
}

// Start opens a new dialogue session for the sender and prompts the first field.
func (e *Engine) Start(c tele.Context) error {
	userID := c.Sender().ID
	e.sessions.Clear(userID)
	e.sessions.SetState(userID, StageName)
	return e.sendPrompt(c, StartPrompt)
}

func (e *Engine) stageHandler(stage state.State) tele.HandlerFunc {
	return func(c tele.Context) error {
		tr, ok := Advance(stage)
		if !ok {
			// Unknown stage means a stale session; drop it.
			e.sessions.Clear(c.Sender().ID)
			return nil
		}
		if tr.Final {
			return e.complete(c)
		}

		userID := c.Sender().ID
		e.sessions.SetTemp(userID, tr.Field, c.Text())
		e.sessions.SetState(userID, tr.Next)
		return e.sendPrompt(c, tr.Prompt)
	}
}

// complete assembles the form, persists it, routes the submission and
// confirms to the user. The session is cleared on every exit path.
func (e *Engine) complete(c tele.Context) error {
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	form := submission.Form{
		UserID:   userID,
		UserName: senderName(c.Sender()),
		Name:     e.tempString(userID, fieldName),
		Quantity: e.tempString(userID, fieldQuantity),
		URL:      e.tempString(userID, fieldURL),
		Unpacked: e.tempString(userID, fieldUnpacked),
		City:     c.Text(),
	}

	id, err := e.subs.Create(ctx, form)
	if err != nil {
		e.sessions.Clear(userID)
		logger.Error(ctx, "intake", "form.save_failed",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgSaveFailed)
	}

	sub := &submission.Submission{
		ID:       id,
		UserID:   form.UserID,
		UserName: form.UserName,
		Name:     form.Name,
		Quantity: form.Quantity,
		URL:      form.URL,
		Unpacked: form.Unpacked,
		City:     form.City,
		Status:   submission.StatusNew,
	}
	if err := e.announcer.AnnounceSubmission(ctx, c, sub); err != nil {
		// The submission is already saved; announce failures must not undo
		// the user-visible acceptance.
		logger.Warn(ctx, "intake", "form.announce_failed",
			slog.Int64("submission_id", id),
			slog.String("err", err.Error()),
		)
	}

	e.sessions.Clear(userID)
	logger.Info(ctx, "intake", "form.completed",
		slog.String("status", "ok"),
		slog.Int64("submission_id", id),
		slog.Int64("user_id", userID),
	)
	return tghelpers.SendText(c, msgThanks)
}

func (e *Engine) tempString(userID int64, key string) string {
	if v, ok := e.sessions.GetTemp(userID, key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (e *Engine) sendPrompt(c tele.Context, p Prompt) error {
	switch p.Keyboard {
	case KeyboardYesNo:
		opts := &tele.SendOptions{ReplyMarkup: keyboard.ReplyButtons([]string{"Да", "Нет"})}
		return tghelpers.SendText(c, p.Text, opts)
	case KeyboardRemove:
		opts := &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()}
		return tghelpers.SendText(c, p.Text, opts)
	default:
		return tghelpers.SendText(c, p.Text)
	}
}

func senderName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	return name
}
