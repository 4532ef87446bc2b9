package handlers

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/internal/settings"
)

const (
	msgReviewsUnset = "Отзывы ещё не настроены."
)

// MenuText matches the reply-keyboard button labels. Unmatched text is
// ignored, mirroring a bot that only reacts to its own menu.
func (h *Handlers) MenuText(c tele.Context) error {
	switch c.Text() {
	case BtnStartForm:
		return h.intake.Start(c)
	case BtnSupport:
		return h.support(c)
	case BtnReviews:
		return h.reviews(c)
	}
	return nil
}

func (h *Handlers) support(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	username, err := h.settings.Get(ctx, settings.KeySupportUsername)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			return fmt.Errorf("resolve support username: %w", err)
		}
		username = h.defaultSupport
	}
	return tghelpers.SendText(c, fmt.Sprintf("Поддержка: @%s", username))
}

func (h *Handlers) reviews(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	link, err := h.settings.Get(ctx, settings.KeyReviewsLink)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			return fmt.Errorf("resolve reviews link: %w", err)
		}
		return tghelpers.SendText(c, msgReviewsUnset)
	}
	return tghelpers.SendText(c, fmt.Sprintf("Отзывы: %s", link))
}
