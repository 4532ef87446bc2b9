// Package handlers wires user and admin entry points: the start menu, the
// setup commands, the reply callback and the menu-button text fallback.
package handlers

import (
	"github.com/skupfast/skupbot/internal/intake"
	"github.com/skupfast/skupbot/internal/replyflow"
	"github.com/skupfast/skupbot/internal/settings"
)

// Main menu button labels. The menu is a reply keyboard, so these arrive as
// plain text and are matched in the text fallback.
const (
	BtnStartForm = "Оставить заявку"
	BtnSupport   = "Поддержка"
	BtnReviews   = "Отзывы"
)

// Handlers bundles the dependencies shared by all entry points.
type Handlers struct {
	intake         *intake.Engine
	settings       settings.Repository
	replies        *replyflow.Correlator
	defaultSupport string
}

// New constructs the handler set. defaultSupport is the support handle shown
// when none is configured yet.
func New(engine *intake.Engine, cfg settings.Repository, replies *replyflow.Correlator, defaultSupport string) *Handlers {
	return &Handlers{
		intake:         engine,
		settings:       cfg,
		replies:        replies,
		defaultSupport: defaultSupport,
	}
}
