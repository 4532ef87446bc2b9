package handlers

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/skupfast/skupbot/core/telegram/helpers"
	"github.com/skupfast/skupbot/core/telegram/keyboard"
)

const msgWelcome = "Добро пожаловать в бота SkupFast!\n" +
	"Если ты хочешь быстро продать свой товар — ты попал по адресу 👇\n\n" +
	"Нажми «Оставить заявку», чтобы начать."

// MainMenu builds the persistent reply keyboard shown after /start.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnStartForm},
		[]string{BtnSupport, BtnReviews},
	)
}

// Start greets the user and shows the main menu.
func (h *Handlers) Start(c tele.Context) error {
	opts := &tele.SendOptions{ReplyMarkup: MainMenu()}
	return tghelpers.SendText(c, msgWelcome, opts)
}
