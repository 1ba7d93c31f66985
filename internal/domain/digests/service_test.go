package digests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"memoria-viva/internal/domain/events"
	"memoria-viva/internal/domain/stories"
	"memoria-viva/internal/ports/email"
)

type testRepo struct {
	subs map[string]Subscriber
}

func newTestRepo() *testRepo {
	return &testRepo{subs: make(map[string]Subscriber)}
}

func (r *testRepo) Subscribe(_ context.Context, s Subscriber) error {
	r.subs[s.Email] = s
	return nil
}

func (r *testRepo) Unsubscribe(_ context.Context, email string) error {
	delete(r.subs, email)
	return nil
}

func (r *testRepo) List(_ context.Context) ([]Subscriber, error) {
	out := make([]Subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out, nil
}

type fakeStories struct {
	items []stories.Story
}

func (f *fakeStories) ListPublished(_ context.Context, _ stories.Category, _ string, _ int) ([]stories.Story, error) {
	return f.items, nil
}

type fakeEvents struct {
	items []events.Instance
}

func (f *fakeEvents) ListInstances(_ context.Context, _, _ time.Time, _ events.Category) ([]events.Instance, error) {
	return f.items, nil
}

type fakeSender struct {
	sent    []email.Message
	failFor string
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.failFor != "" && len(msg.To) == 1 && msg.To[0] == f.failFor {
		return errors.New("upstream rejected")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func sampleContent() (*fakeStories, *fakeEvents) {
	start := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	ev := events.Event{ID: "ev-1", Title: "Feria costumbrista", Location: "Plaza"}

	st := &fakeStories{items: []stories.Story{
		{ID: "st-1", Title: "La lancha de mi abuelo", Summary: "Recuerdos del canal"},
	}}
	evs := &fakeEvents{items: []events.Instance{
		{Event: ev, StartsAt: start, InstanceDate: "2025-06-02"},
	}}
	return st, evs
}

func TestSubscribe_NormalizesAndValidates(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, &fakeStories{}, &fakeEvents{}, nil, nil)

	if err := svc.Subscribe(context.Background(), "  Vecina@Example.ORG "); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, ok := repo.subs["vecina@example.org"]; !ok {
		t.Fatalf("se esperaba email normalizado en minúsculas, got %v", repo.subs)
	}

	if err := svc.Subscribe(context.Background(), "sin-arroba"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("se esperaba ErrInvalidInput, got %v", err)
	}
}

func TestSend_NoSubscribers_SendsNothing(t *testing.T) {
	st, ev := sampleContent()
	sender := &fakeSender{}
	svc := NewService(newTestRepo(), st, ev, sender, nil)

	sent, err := svc.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 0 || len(sender.sent) != 0 {
		t.Fatalf("no debía enviarse nada, sent=%d msgs=%d", sent, len(sender.sent))
	}
}

func TestSend_NoContent_SendsNothing(t *testing.T) {
	repo := newTestRepo()
	sender := &fakeSender{}
	svc := NewService(repo, &fakeStories{}, &fakeEvents{}, sender, nil)
	_ = svc.Subscribe(context.Background(), "a@b.cl")

	sent, err := svc.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 0 {
		t.Fatalf("digest vacío no debía enviarse, sent=%d", sent)
	}
}

func TestSend_DeliversToEachSubscriber(t *testing.T) {
	repo := newTestRepo()
	st, ev := sampleContent()
	sender := &fakeSender{}
	svc := NewService(repo, st, ev, sender, nil)
	_ = svc.Subscribe(context.Background(), "a@b.cl")
	_ = svc.Subscribe(context.Background(), "c@d.cl")

	sent, err := svc.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 2 || len(sender.sent) != 2 {
		t.Fatalf("se esperaban 2 envíos, sent=%d msgs=%d", sent, len(sender.sent))
	}

	msg := sender.sent[0]
	if !strings.Contains(msg.HTML, "La lancha de mi abuelo") {
		t.Errorf("HTML debía incluir la historia publicada: %q", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Feria costumbrista") {
		t.Errorf("HTML debía incluir el evento próximo: %q", msg.HTML)
	}
	if !strings.Contains(msg.Text, "Recuerdos del canal") {
		t.Errorf("texto plano debía incluir el resumen: %q", msg.Text)
	}
}

func TestSend_OneFailureDoesNotStopOthers(t *testing.T) {
	repo := newTestRepo()
	st, ev := sampleContent()
	sender := &fakeSender{failFor: "a@b.cl"}
	svc := NewService(repo, st, ev, sender, nil)
	_ = svc.Subscribe(context.Background(), "a@b.cl")
	_ = svc.Subscribe(context.Background(), "c@d.cl")

	sent, err := svc.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 1 {
		t.Fatalf("el envío fallido no debía frenar al resto, sent=%d", sent)
	}
}

func TestSend_WithoutSenderConfigured(t *testing.T) {
	svc := NewService(newTestRepo(), &fakeStories{}, &fakeEvents{}, nil, nil)
	if _, err := svc.Send(context.Background()); !errors.Is(err, ErrNoSender) {
		t.Fatalf("se esperaba ErrNoSender, got %v", err)
	}
}
