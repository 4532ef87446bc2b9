package handlers

import (
	"context"
	"strconv"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/telegram/state"
	"github.com/skupfast/skupbot/internal/intake"
	"github.com/skupfast/skupbot/internal/replyflow"
	"github.com/skupfast/skupbot/internal/settings"
	"github.com/skupfast/skupbot/internal/submission"
)

type fakeContext struct {
	tele.Context
	sender    *tele.User
	chat      *tele.Chat
	text      string
	payload   string
	callback  *tele.Callback
	store     map[string]interface{}
	sent      []string
	responses []*tele.CallbackResponse
}

func newFakeContext(userID, chatID int64) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: chatID},
		store:  map[string]interface{}{},
	}
}

func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Chat() *tele.Chat         { return c.chat }
func (c *fakeContext) Text() string             { return c.text }
func (c *fakeContext) Update() tele.Update      { return tele.Update{ID: 1} }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }
func (c *fakeContext) Message() *tele.Message   { return &tele.Message{Payload: c.payload} }

func (c *fakeContext) Get(key string) interface{}    { return c.store[key] }
func (c *fakeContext) Set(key string, v interface{}) { c.store[key] = v }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		c.responses = append(c.responses, &tele.CallbackResponse{})
		return nil
	}
	c.responses = append(c.responses, resp...)
	return nil
}

type fakeSettings struct {
	values map[string]string
	err    error
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", settings.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettings) OwnerID(ctx context.Context) (int64, error) {
	return f.getInt64(ctx, settings.KeyOwnerID)
}

func (f *fakeSettings) ManagerChatID(ctx context.Context) (int64, error) {
	return f.getInt64(ctx, settings.KeyManagerChatID)
}

func (f *fakeSettings) getInt64(ctx context.Context, key string) (int64, error) {
	v, err := f.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

type stubRepo struct{}

func (stubRepo) Create(context.Context, submission.Form) (int64, error) { return 1, nil }
func (stubRepo) Get(context.Context, int64) (*submission.Submission, error) {
	return nil, submission.ErrNotFound
}
func (stubRepo) MarkAnswered(context.Context, int64, int64, string) error { return nil }

type stubAnnouncer struct{}

func (stubAnnouncer) AnnounceSubmission(context.Context, tele.Context, *submission.Submission) error {
	return nil
}

func newTestHandlers(cfg *fakeSettings) (*Handlers, *replyflow.Correlator) {
	sessions := state.NewMemoryManager()
	engine := intake.NewEngine(sessions, stubRepo{}, stubAnnouncer{})
	replies := replyflow.NewCorrelator()
	return New(engine, cfg, replies, "skupfast"), replies
}

func TestStartShowsMenu(t *testing.T) {
	h, _ := newTestHandlers(&fakeSettings{})
	c := newFakeContext(42, 42)

	if err := h.Start(c); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Добро пожаловать в бота SkupFast!") {
		t.Errorf("greeting = %q", c.sent)
	}
}

func TestMainMenuLayout(t *testing.T) {
	markup := MainMenu()
	if len(markup.ReplyKeyboard) != 2 {
		t.Fatalf("menu rows = %d, want 2", len(markup.ReplyKeyboard))
	}
	if markup.ReplyKeyboard[0][0].Text != BtnStartForm {
		t.Errorf("first button = %q", markup.ReplyKeyboard[0][0].Text)
	}
	if len(markup.ReplyKeyboard[1]) != 2 {
		t.Errorf("second row buttons = %d, want 2", len(markup.ReplyKeyboard[1]))
	}
}

func TestRegisterAdmin(t *testing.T) {
	cfg := &fakeSettings{}
	h, _ := newTestHandlers(cfg)
	c := newFakeContext(77, 77)

	if err := h.RegisterAdmin(c); err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	if cfg.values[settings.KeyOwnerID] != "77" {
		t.Errorf("owner_id = %q", cfg.values[settings.KeyOwnerID])
	}
	if cfg.values[settings.KeySupportUsername] != "skupfast" {
		t.Errorf("support_username = %q", cfg.values[settings.KeySupportUsername])
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Вы зарегистрированы как администратор") {
		t.Errorf("reply = %q", c.sent)
	}
}

func TestSetManagerChatStoresIssuingChat(t *testing.T) {
	cfg := &fakeSettings{}
	h, _ := newTestHandlers(cfg)
	c := newFakeContext(77, -100500)

	if err := h.SetManagerChat(c); err != nil {
		t.Fatalf("SetManagerChat: %v", err)
	}
	if cfg.values[settings.KeyManagerChatID] != "-100500" {
		t.Errorf("manager_chat_id = %q", cfg.values[settings.KeyManagerChatID])
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Менеджерский чат сохранён: -100500") {
		t.Errorf("reply = %q", c.sent)
	}
}

func TestSetReviews(t *testing.T) {
	cfg := &fakeSettings{}
	h, _ := newTestHandlers(cfg)

	c := newFakeContext(77, 77)
	if err := h.SetReviews(c); err != nil {
		t.Fatalf("SetReviews without args: %v", err)
	}
	if len(c.sent) != 1 || !strings.HasPrefix(c.sent[0], "Использование:") {
		t.Errorf("usage reply = %q", c.sent)
	}
	if _, ok := cfg.values[settings.KeyReviewsLink]; ok {
		t.Error("link stored without an argument")
	}

	c = newFakeContext(77, 77)
	c.payload = "https://t.me/skupfast_reviews"
	if err := h.SetReviews(c); err != nil {
		t.Fatalf("SetReviews: %v", err)
	}
	if cfg.values[settings.KeyReviewsLink] != "https://t.me/skupfast_reviews" {
		t.Errorf("reviews_link = %q", cfg.values[settings.KeyReviewsLink])
	}
}

func TestMenuTextSupport(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{"configured", map[string]string{settings.KeySupportUsername: "helpdesk"}, "Поддержка: @helpdesk"},
		{"default", nil, "Поддержка: @skupfast"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandlers(&fakeSettings{values: tc.values})
			c := newFakeContext(42, 42)
			c.text = BtnSupport

			if err := h.MenuText(c); err != nil {
				t.Fatalf("MenuText: %v", err)
			}
			if len(c.sent) != 1 || c.sent[0] != tc.want {
				t.Errorf("reply = %q, want %q", c.sent, tc.want)
			}
		})
	}
}

func TestMenuTextReviews(t *testing.T) {
	h, _ := newTestHandlers(&fakeSettings{values: map[string]string{
		settings.KeyReviewsLink: "https://t.me/reviews",
	}})
	c := newFakeContext(42, 42)
	c.text = BtnReviews

	if err := h.MenuText(c); err != nil {
		t.Fatalf("MenuText: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "Отзывы: https://t.me/reviews" {
		t.Errorf("reply = %q", c.sent)
	}

	h, _ = newTestHandlers(&fakeSettings{})
	c = newFakeContext(42, 42)
	c.text = BtnReviews
	if err := h.MenuText(c); err != nil {
		t.Fatalf("MenuText: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "Отзывы ещё не настроены." {
		t.Errorf("reply = %q", c.sent)
	}
}

func TestMenuTextIgnoresUnknown(t *testing.T) {
	h, _ := newTestHandlers(&fakeSettings{})
	c := newFakeContext(42, 42)
	c.text = "просто сообщение"

	if err := h.MenuText(c); err != nil {
		t.Fatalf("MenuText: %v", err)
	}
	if len(c.sent) != 0 {
		t.Errorf("unexpected reply to unmatched text: %q", c.sent)
	}
}

func TestReplyCallbackArmsCorrelator(t *testing.T) {
	h, replies := newTestHandlers(&fakeSettings{values: map[string]string{
		settings.KeyManagerChatID: "-1000",
	}})
	c := newFakeContext(5, -1000)
	c.callback = &tele.Callback{Unique: "reply", Data: "\freply|7"}

	if err := h.ReplyCallback(c); err != nil {
		t.Fatalf("ReplyCallback: %v", err)
	}
	if id, ok := replies.Pending(5); !ok || id != 7 {
		t.Fatalf("pending = (%d, %v), want (7, true)", id, ok)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Вы отвечаете на заявку #7") {
		t.Errorf("prompt = %q", c.sent)
	}
}

func TestReplyCallbackOutsideManagerChat(t *testing.T) {
	h, replies := newTestHandlers(&fakeSettings{values: map[string]string{
		settings.KeyManagerChatID: "-1000",
	}})
	c := newFakeContext(5, 42)
	c.callback = &tele.Callback{Unique: "reply", Data: "\freply|7"}

	if err := h.ReplyCallback(c); err != nil {
		t.Fatalf("ReplyCallback: %v", err)
	}
	if _, ok := replies.Pending(5); ok {
		t.Error("correlator armed outside the manager chat")
	}
	if len(c.responses) != 1 || !c.responses[0].ShowAlert {
		t.Fatalf("responses = %+v, want one alert", c.responses)
	}
	if c.responses[0].Text != "Эта кнопка доступна только в менеджерском чате." {
		t.Errorf("alert text = %q", c.responses[0].Text)
	}
}

func TestReplyCallbackWithoutManagerChat(t *testing.T) {
	h, replies := newTestHandlers(&fakeSettings{})
	c := newFakeContext(5, -1000)
	c.callback = &tele.Callback{Unique: "reply", Data: "\freply|7"}

	if err := h.ReplyCallback(c); err != nil {
		t.Fatalf("ReplyCallback: %v", err)
	}
	if _, ok := replies.Pending(5); ok {
		t.Error("correlator armed with no manager chat configured")
	}
	if len(c.responses) != 1 || !c.responses[0].ShowAlert {
		t.Fatalf("responses = %+v, want one alert", c.responses)
	}
}
