package digests

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"memoria-viva/internal/domain/events"
	"memoria-viva/internal/domain/stories"
	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/email"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoSender     = errors.New("email sender not configured")
)

const (
	maxDigestStories = 5
	upcomingWindow   = 7 * 24 * time.Hour
)

// StorySource expone lo que el digest necesita del módulo de historias.
type StorySource interface {
	ListPublished(ctx context.Context, category stories.Category, query string, limit int) ([]stories.Story, error)
}

// EventSource expone las instancias expandidas de eventos para un rango.
type EventSource interface {
	ListInstances(ctx context.Context, from, to time.Time, category events.Category) ([]events.Instance, error)
}

type Service struct {
	repo    Repository
	stories StorySource
	events  EventSource
	sender  email.Sender // puede ser nil
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, st StorySource, ev EventSource, sender email.Sender, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		stories: st,
		events:  ev,
		sender:  sender,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) Subscribe(ctx context.Context, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || !strings.Contains(address, "@") {
		return ErrInvalidInput
	}
	return s.repo.Subscribe(ctx, Subscriber{Email: address, CreatedAt: s.now()})
}

func (s *Service) Unsubscribe(ctx context.Context, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return ErrInvalidInput
	}
	return s.repo.Unsubscribe(ctx, address)
}

func (s *Service) Subscribers(ctx context.Context) ([]Subscriber, error) {
	return s.repo.List(ctx)
}

// Digest es el contenido compuesto para un envío.
type Digest struct {
	Stories   []stories.Story
	Instances []events.Instance
}

// Compose arma el digest: últimas historias publicadas más las instancias
// de eventos de los próximos 7 días.
func (s *Service) Compose(ctx context.Context) (Digest, error) {
	var d Digest

	published, err := s.stories.ListPublished(ctx, "", "", maxDigestStories)
	if err != nil {
		return Digest{}, fmt.Errorf("listing published stories: %w", err)
	}
	d.Stories = published

	from := s.now()
	inst, err := s.events.ListInstances(ctx, from, from.Add(upcomingWindow), "")
	if err != nil {
		return Digest{}, fmt.Errorf("listing upcoming events: %w", err)
	}
	d.Instances = inst
	return d, nil
}

// Send compone y envía el digest a todos los suscriptores. Si no hay
// contenido ni suscriptores no envía nada y no es error.
func (s *Service) Send(ctx context.Context) (int, error) {
	if s.sender == nil {
		return 0, ErrNoSender
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		s.log.Debug("digest sin suscriptores, no se envía", nil)
		return 0, nil
	}

	d, err := s.Compose(ctx)
	if err != nil {
		return 0, err
	}
	if len(d.Stories) == 0 && len(d.Instances) == 0 {
		s.log.Info("digest sin contenido esta semana, no se envía", nil)
		return 0, nil
	}

	msg := email.Message{
		Subject: s.subject(),
		HTML:    renderHTML(d),
		Text:    renderText(d),
	}

	sent := 0
	for _, sub := range subs {
		msg.To = []string{sub.Email}
		if err := s.sender.Send(ctx, msg); err != nil {
			// un destinatario fallido no frena al resto
			s.log.Warn("no se pudo enviar digest", map[string]any{
				"email": sub.Email,
				"error": err.Error(),
			})
			continue
		}
		sent++
	}
	s.log.Info("digest enviado", map[string]any{"enviados": sent, "suscriptores": len(subs)})
	return sent, nil
}

func (s *Service) subject() string {
	return "Memoria Viva — lo nuevo de la semana (" + s.now().Format("02/01/2006") + ")"
}

func renderHTML(d Digest) string {
	var b strings.Builder
	b.WriteString("<h1>Memoria Viva</h1>")

	if len(d.Stories) > 0 {
		b.WriteString("<h2>Historias recientes</h2><ul>")
		for _, st := range d.Stories {
			b.WriteString("<li><strong>" + html.EscapeString(st.Title) + "</strong>")
			if st.Summary != "" {
				b.WriteString(" — " + html.EscapeString(st.Summary))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	if len(d.Instances) > 0 {
		b.WriteString("<h2>Próximos eventos</h2><ul>")
		for _, in := range d.Instances {
			b.WriteString("<li>" + html.EscapeString(in.Title) + " · " + in.StartsAt.Format("Mon 02 Jan 15:04"))
			if in.Location != "" {
				b.WriteString(" · " + html.EscapeString(in.Location))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}
	return b.String()
}

func renderText(d Digest) string {
	var b strings.Builder
	b.WriteString("Memoria Viva\n\n")
	if len(d.Stories) > 0 {
		b.WriteString("Historias recientes:\n")
		for _, st := range d.Stories {
			b.WriteString("- " + st.Title)
			if st.Summary != "" {
				b.WriteString(": " + st.Summary)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(d.Instances) > 0 {
		b.WriteString("Próximos eventos:\n")
		for _, in := range d.Instances {
			b.WriteString("- " + in.Title + " (" + in.StartsAt.Format("02/01 15:04") + ")\n")
		}
	}
	return b.String()
}
