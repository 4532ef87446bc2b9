package notify

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/internal/settings"
	"github.com/skupfast/skupbot/internal/submission"
)

type sentMessage struct {
	to   tele.Recipient
	text string
	opts []interface{}
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (s *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	text, _ := what.(string)
	s.sent = append(s.sent, sentMessage{to: to, text: text, opts: opts})
	return &tele.Message{}, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
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

type fakeContext struct {
	tele.Context
	sent []string
}

func (c *fakeContext) Sender() *tele.User  { return &tele.User{ID: 42} }
func (c *fakeContext) Chat() *tele.Chat    { return &tele.Chat{ID: 42} }
func (c *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (c *fakeContext) Get(string) interface{}  { return nil }
func (c *fakeContext) Set(string, interface{}) {}

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func testSubmission() *submission.Submission {
	return &submission.Submission{
		ID:       7,
		UserID:   42,
		UserName: "Иван Петров",
		Name:     "iPhone <14>",
		Quantity: "2",
		URL:      "https://example.com/item",
		Unpacked: "Нет",
		City:     "Москва",
		Status:   submission.StatusNew,
	}
}

func TestSubmissionTextEscapesUserInput(t *testing.T) {
	text := SubmissionText(testSubmission())

	if !strings.Contains(text, "📥 <b>Новая заявка #7</b>") {
		t.Errorf("missing header: %q", text)
	}
	if !strings.Contains(text, "iPhone &lt;14&gt;") {
		t.Errorf("user input not escaped: %q", text)
	}
	if !strings.Contains(text, "(id: <code>42</code>)") {
		t.Errorf("missing user id: %q", text)
	}
	for _, label := range []string{"Пользователь", "Название", "Количество", "Ссылка", "Распакован", "Город"} {
		if !strings.Contains(text, "<b>"+label+":</b>") {
			t.Errorf("missing %q field: %q", label, text)
		}
	}
}

func TestEvaluationText(t *testing.T) {
	got := EvaluationText(testSubmission(), "1200₽")
	want := "Оценка товара: 1200₽\n\nНазвание: iPhone <14>\nЕсли согласны — напишите менеджеру."
	if got != want {
		t.Errorf("EvaluationText = %q, want %q", got, want)
	}
}

func TestAnnounceToManagerChat(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(&fakeSettings{values: map[string]string{settings.KeyManagerChatID: "-1000"}})
	n.Bind(bot)

	c := &fakeContext{}
	if err := n.AnnounceSubmission(context.Background(), c, testSubmission()); err != nil {
		t.Fatalf("AnnounceSubmission: %v", err)
	}

	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.to != tele.ChatID(-1000) {
		t.Errorf("recipient = %v, want manager chat", msg.to)
	}
	if len(msg.opts) != 1 {
		t.Fatalf("send opts = %v", msg.opts)
	}
	opts, ok := msg.opts[0].(*tele.SendOptions)
	if !ok || opts.ReplyMarkup == nil {
		t.Fatal("announcement lacks the reply markup")
	}
	if opts.ParseMode != tele.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", opts.ParseMode)
	}
	if len(c.sent) != 0 {
		t.Errorf("user was messaged on the happy path: %q", c.sent)
	}
}

func TestAnnounceFallsBackToOwner(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(&fakeSettings{values: map[string]string{settings.KeyOwnerID: "77"}})
	n.Bind(bot)

	c := &fakeContext{}
	if err := n.AnnounceSubmission(context.Background(), c, testSubmission()); err != nil {
		t.Fatalf("AnnounceSubmission: %v", err)
	}

	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "менеджерский чат не настроен") {
		t.Errorf("user notice = %q", c.sent)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.to != tele.ChatID(77) {
		t.Errorf("recipient = %v, want owner", msg.to)
	}
	if !strings.Contains(msg.text, "Новая заявка #7 (менеджерский чат не настроен):") {
		t.Errorf("owner fallback text = %q", msg.text)
	}
}

func TestAnnounceWithoutAnyTarget(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(&fakeSettings{})
	n.Bind(bot)

	c := &fakeContext{}
	if err := n.AnnounceSubmission(context.Background(), c, testSubmission()); err != nil {
		t.Fatalf("AnnounceSubmission: %v", err)
	}
	if len(bot.sent) != 0 {
		t.Errorf("unexpected outbound messages: %+v", bot.sent)
	}
	if len(c.sent) != 1 {
		t.Errorf("user notice = %q", c.sent)
	}
}

func TestAnnounceManagerSendFailure(t *testing.T) {
	bot := &fakeSender{err: errors.New("chat not found")}
	n := NewNotifier(&fakeSettings{values: map[string]string{settings.KeyManagerChatID: "-1000"}})
	n.Bind(bot)

	err := n.AnnounceSubmission(context.Background(), &fakeContext{}, testSubmission())
	if err == nil {
		t.Fatal("manager chat send failure not reported")
	}
}

func TestDeliverEvaluation(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(&fakeSettings{})
	n.Bind(bot)

	if err := n.DeliverEvaluation(context.Background(), testSubmission(), "1200₽"); err != nil {
		t.Fatalf("DeliverEvaluation: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	if bot.sent[0].to != tele.ChatID(42) {
		t.Errorf("recipient = %v, want the submitting user", bot.sent[0].to)
	}
	if !strings.HasPrefix(bot.sent[0].text, "Оценка товара: 1200₽") {
		t.Errorf("evaluation text = %q", bot.sent[0].text)
	}
}
