package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skupfast/skupbot/core/bootstrap"
	coretelegram "github.com/skupfast/skupbot/core/telegram"
	"github.com/skupfast/skupbot/core/telegram/router"
	"github.com/skupfast/skupbot/core/telegram/state"
	"github.com/skupfast/skupbot/internal/handlers"
	"github.com/skupfast/skupbot/internal/intake"
	"github.com/skupfast/skupbot/internal/notify"
	"github.com/skupfast/skupbot/internal/replyflow"
	"github.com/skupfast/skupbot/internal/settings"
	"github.com/skupfast/skupbot/internal/submission"
)

// App holds the composed application.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	sessions state.Manager
	notifier *notify.Notifier
	replies  *replyflow.Service
	handlers *handlers.Handlers
}

// Bootstrap initializes infrastructure and composes the domain services.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	subs := submission.NewRepository(res.DB)
	cfgRepo := settings.NewRepository(res.DB)
	notifier := notify.NewNotifier(cfgRepo)

	sessions := state.NewMemoryManager()
	engine := intake.NewEngine(sessions, subs, notifier)
	engine.RegisterStages()

	replies := replyflow.NewService(replyflow.NewCorrelator(), subs, notifier)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		sessions: sessions,
		notifier: notifier,
		replies:  replies,
		handlers: handlers.New(engine, cfgRepo, replies.Correlator(), cfg.Bot.DefaultSupportUsername),
	}, nil
}

// TelegramRunOptions builds the run options consumed by the shared runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: handler registration failed: %w", err)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		Interceptor: a.replies,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
