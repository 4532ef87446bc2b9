package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/skupfast/skupbot/core/telegram/state"
	"github.com/skupfast/skupbot/internal/submission"
)

type fakeContext struct {
	tele.Context
	sender *tele.User
	chat   *tele.Chat
	text   string
	store  map[string]interface{}
	sent   []string
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID, FirstName: "Иван", LastName: "Петров"},
		chat:   &tele.Chat{ID: userID},
		store:  map[string]interface{}{},
	}
}

func (c *fakeContext) Sender() *tele.User  { return c.sender }
func (c *fakeContext) Chat() *tele.Chat    { return c.chat }
func (c *fakeContext) Text() string        { return c.text }
func (c *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (c *fakeContext) Get(key string) interface{}    { return c.store[key] }
func (c *fakeContext) Set(key string, v interface{}) { c.store[key] = v }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type fakeRepo struct {
	nextID  int64
	created []submission.Form
	err     error
}

func (r *fakeRepo) Create(_ context.Context, form submission.Form) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.created = append(r.created, form)
	r.nextID++
	return r.nextID, nil
}

func (r *fakeRepo) Get(context.Context, int64) (*submission.Submission, error) {
	return nil, submission.ErrNotFound
}

func (r *fakeRepo) MarkAnswered(context.Context, int64, int64, string) error {
	return nil
}

type fakeAnnouncer struct {
	announced []*submission.Submission
	err       error
}

func (a *fakeAnnouncer) AnnounceSubmission(_ context.Context, _ tele.Context, sub *submission.Submission) error {
	a.announced = append(a.announced, sub)
	return a.err
}

func runDialogue(t *testing.T, eng *Engine, sessions state.Manager, c *fakeContext, answers []string) {
	t.Helper()
	if err := eng.Start(c); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, answer := range answers {
		c.text = answer
		if !sessions.InProgress(c.sender.ID) {
			t.Fatalf("session gone before answer %q", answer)
		}
		if err := sessions.ManagerHandler(c); err != nil {
			t.Fatalf("ManagerHandler(%q): %v", answer, err)
		}
	}
}

func TestDialogueCollectsForm(t *testing.T) {
	sessions := state.NewMemoryManager()
	repo := &fakeRepo{}
	ann := &fakeAnnouncer{}
	eng := NewEngine(sessions, repo, ann)
	eng.RegisterStages()

	c := newFakeContext(42)
	runDialogue(t, eng, sessions, c, []string{"iPhone 14", "2", "https://example.com/item", "Нет", "Москва"})

	if len(repo.created) != 1 {
		t.Fatalf("created %d submissions, want 1", len(repo.created))
	}
	form := repo.created[0]
	if form.UserID != 42 {
		t.Errorf("UserID = %d, want 42", form.UserID)
	}
	if form.UserName != "Иван Петров" {
		t.Errorf("UserName = %q", form.UserName)
	}
	if form.Name != "iPhone 14" || form.Quantity != "2" || form.URL != "https://example.com/item" ||
		form.Unpacked != "Нет" || form.City != "Москва" {
		t.Errorf("form fields = %+v", form)
	}

	if len(ann.announced) != 1 || ann.announced[0].ID != 1 {
		t.Fatalf("announced = %+v", ann.announced)
	}
	if ann.announced[0].Status != submission.StatusNew {
		t.Errorf("announced status = %q, want %q", ann.announced[0].Status, submission.StatusNew)
	}

	if sessions.InProgress(42) {
		t.Error("session still in progress after completion")
	}
	if got := c.lastSent(); !strings.HasPrefix(got, "Благодарим вас за анкету!") {
		t.Errorf("final message = %q", got)
	}
}

func TestDialoguePromptsInOrder(t *testing.T) {
	sessions := state.NewMemoryManager()
	eng := NewEngine(sessions, &fakeRepo{}, &fakeAnnouncer{})
	eng.RegisterStages()

	c := newFakeContext(7)
	runDialogue(t, eng, sessions, c, []string{"товар", "1", "-", "Да"})

	wantPrompts := []string{
		"Введите название товара:",
		"Количество товара (число или описание):",
		"Ссылка на товар (если есть), либо напишите '-' :",
		"Распакован ли товар? (Да/Нет)",
		"Укажите город, где находится товар:",
	}
	if len(c.sent) != len(wantPrompts) {
		t.Fatalf("sent %d messages, want %d: %q", len(c.sent), len(wantPrompts), c.sent)
	}
	for i, want := range wantPrompts {
		if c.sent[i] != want {
			t.Errorf("prompt %d = %q, want %q", i, c.sent[i], want)
		}
	}
}

func TestDialogueSaveFailureClearsSession(t *testing.T) {
	sessions := state.NewMemoryManager()
	repo := &fakeRepo{err: errors.New("db down")}
	ann := &fakeAnnouncer{}
	eng := NewEngine(sessions, repo, ann)
	eng.RegisterStages()

	c := newFakeContext(9)
	runDialogue(t, eng, sessions, c, []string{"a", "b", "c", "d", "e"})

	if sessions.InProgress(9) {
		t.Error("session survives a failed save")
	}
	if len(ann.announced) != 0 {
		t.Error("failed save was announced")
	}
	if got := c.lastSent(); !strings.Contains(got, "Не удалось сохранить заявку") {
		t.Errorf("failure message = %q", got)
	}
}

func TestStartResetsPreviousSession(t *testing.T) {
	sessions := state.NewMemoryManager()
	eng := NewEngine(sessions, &fakeRepo{}, &fakeAnnouncer{})
	eng.RegisterStages()

	c := newFakeContext(11)
	runDialogue(t, eng, sessions, c, []string{"старый товар", "5"})

	// Restart mid-dialogue: collected answers must not leak into a new form.
	if err := eng.Start(c); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := sessions.GetState(11); got != StageName {
		t.Errorf("state after restart = %q, want %q", got, StageName)
	}
	if _, ok := sessions.GetTemp(11, fieldName); ok {
		t.Error("restart kept stale form data")
	}
}

func TestAnnounceFailureStillConfirms(t *testing.T) {
	sessions := state.NewMemoryManager()
	repo := &fakeRepo{}
	ann := &fakeAnnouncer{err: errors.New("chat unreachable")}
	eng := NewEngine(sessions, repo, ann)
	eng.RegisterStages()

	c := newFakeContext(13)
	runDialogue(t, eng, sessions, c, []string{"a", "b", "c", "d", "e"})

	if len(repo.created) != 1 {
		t.Fatalf("created %d submissions, want 1", len(repo.created))
	}
	if got := c.lastSent(); !strings.HasPrefix(got, "Благодарим вас за анкету!") {
		t.Errorf("confirmation after announce failure = %q", got)
	}
}
