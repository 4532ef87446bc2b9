package handlers

import (
	tg "github.com/skupfast/skupbot/core/telegram"
	"github.com/skupfast/skupbot/core/telegram/commands"
	"github.com/skupfast/skupbot/internal/notify"
)

// Register wires all commands, callbacks and the text fallback into the
// registry. The setup commands stay hidden from the public command menu.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/register_admin", commands.Command{
		Handler:     h.RegisterAdmin,
		Description: "Зарегистрировать владельца",
		Hidden:      true,
	})
	reg.RegisterCommand("/set_manager_chat", commands.Command{
		Handler:     h.SetManagerChat,
		Description: "Назначить менеджерский чат",
		Hidden:      true,
	})
	reg.RegisterCommand("/set_reviews", commands.Command{
		Handler:     h.SetReviews,
		Description: "Сохранить ссылку на отзывы",
		Hidden:      true,
	})

	if err := reg.RegisterCallback(notify.ReplyCallbackKey, h.ReplyCallback); err != nil {
		return err
	}

	reg.SetTextFallback(h.MenuText)
	return nil
}
