package stories

import (
	"context"
	"errors"
	"strings"
	"time"

	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/ai"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotPublished   = errors.New("story not published")
	ErrAlreadyReviewed = errors.New("story already reviewed")
)

const maxBodyLen = 20000

type Service struct {
	repo      Repository
	assistant ai.Assistant // puede ser nil
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, assistant ai.Assistant, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		assistant: assistant,
		log:       log,
		now:       time.Now,
	}
}

type SubmitInput struct {
	Title      string
	Body       string
	Category   Category
	AuthorName string
}

// Submit registra un relato en estado pending. La moderación automática es
// best-effort: si el proveedor marca el texto, el relato queda flagged para
// el equipo editorial; nunca se rechaza solo.
func (s *Service) Submit(ctx context.Context, authorUserID string, in SubmitInput) (Story, error) {
	if strings.TrimSpace(authorUserID) == "" {
		return Story{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return Story{}, ErrInvalidInput
	}
	if len(in.Body) > maxBodyLen {
		return Story{}, ErrInvalidInput
	}

	cat := in.Category
	if cat == "" {
		cat = CategoryOther
	}

	now := s.now()
	st := Story{
		ID:           uuid.NewString(),
		AuthorUserID: authorUserID,
		AuthorName:   strings.TrimSpace(in.AuthorName),
		Title:        strings.TrimSpace(in.Title),
		Body:         strings.TrimSpace(in.Body),
		Category:     cat,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.assistant != nil {
		if res, err := s.assistant.Moderate(ctx, st.Title+"\n\n"+st.Body); err != nil {
			s.log.Warn("moderation unavailable", map[string]any{"story_id": st.ID, "err": err.Error()})
		} else if res.Flagged {
			st.Flagged = true
			st.FlagReason = res.Reason
		}
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return Story{}, err
	}
	return st, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Story, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Story{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListPublished es el listado público (browse/search).
func (s *Service) ListPublished(ctx context.Context, category Category, query string, limit int) ([]Story, error) {
	return s.repo.List(ctx, ListFilter{
		Status:   StatusPublished,
		Category: category,
		Query:    strings.TrimSpace(query),
		Limit:    limit,
	})
}

// ListPending es la cola de revisión editorial.
func (s *Service) ListPending(ctx context.Context, limit int) ([]Story, error) {
	return s.repo.List(ctx, ListFilter{Status: StatusPending, Limit: limit})
}

func (s *Service) ListByAuthor(ctx context.Context, authorUserID string) ([]Story, error) {
	return s.repo.ListByAuthor(ctx, authorUserID)
}

// Publish aprueba el relato. Si no tiene resumen y hay proveedor de IA,
// se genera uno en el momento (best-effort).
func (s *Service) Publish(ctx context.Context, id string) (Story, error) {
	st, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Story{}, err
	}
	if st.Status != StatusPending {
		return Story{}, ErrAlreadyReviewed
	}

	now := s.now()
	st.Status = StatusPublished
	st.PublishedAt = &now
	st.UpdatedAt = now

	if st.Summary == "" && s.assistant != nil {
		if sum, err := s.assistant.Summarize(ctx, st.Body); err != nil {
			s.log.Warn("summary unavailable", map[string]any{"story_id": st.ID, "err": err.Error()})
		} else {
			st.Summary = sum
		}
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return Story{}, err
	}
	return st, nil
}

func (s *Service) Reject(ctx context.Context, id, reason string) (Story, error) {
	st, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Story{}, err
	}
	if st.Status != StatusPending {
		return Story{}, ErrAlreadyReviewed
	}

	st.Status = StatusRejected
	st.RejectReason = strings.TrimSpace(reason)
	st.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, st); err != nil {
		return Story{}, err
	}
	return st, nil
}

func (s *Service) Like(ctx context.Context, storyID, userID string) error {
	st, err := s.repo.GetByID(ctx, strings.TrimSpace(storyID))
	if err != nil {
		return err
	}
	if st.Status != StatusPublished {
		return ErrNotPublished
	}
	return s.repo.Like(ctx, st.ID, userID)
}

func (s *Service) Unlike(ctx context.Context, storyID, userID string) error {
	return s.repo.Unlike(ctx, strings.TrimSpace(storyID), userID)
}

func (s *Service) LikeCount(ctx context.Context, storyID string) (int, error) {
	return s.repo.LikeCount(ctx, strings.TrimSpace(storyID))
}

func (s *Service) AddComment(ctx context.Context, storyID, authorUserID, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" || strings.TrimSpace(authorUserID) == "" {
		return Comment{}, ErrInvalidInput
	}

	st, err := s.repo.GetByID(ctx, strings.TrimSpace(storyID))
	if err != nil {
		return Comment{}, err
	}
	if st.Status != StatusPublished {
		return Comment{}, ErrNotPublished
	}

	c := Comment{
		ID:           uuid.NewString(),
		StoryID:      st.ID,
		AuthorUserID: authorUserID,
		Body:         body,
		CreatedAt:    s.now(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return Comment{}, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, storyID string) ([]Comment, error) {
	return s.repo.ListComments(ctx, strings.TrimSpace(storyID))
}

func (s *Service) RemoveComment(ctx context.Context, commentID string) error {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetComment(ctx, commentID); err != nil {
		return err
	}
	return s.repo.RemoveComment(ctx, commentID)
}

// Enhance devuelve el cuerpo mejorado por IA sin persistirlo: el autor
// decide si reemplaza su texto.
func (s *Service) Enhance(ctx context.Context, id string) (string, error) {
	if s.assistant == nil {
		return "", errors.New("ai assistant not configured")
	}
	st, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return "", err
	}
	return s.assistant.Enhance(ctx, st.Body)
}

// Summarize genera y persiste el resumen corto del relato.
func (s *Service) Summarize(ctx context.Context, id string) (Story, error) {
	if s.assistant == nil {
		return Story{}, errors.New("ai assistant not configured")
	}
	st, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Story{}, err
	}

	sum, err := s.assistant.Summarize(ctx, st.Body)
	if err != nil {
		return Story{}, err
	}

	st.Summary = strings.TrimSpace(sum)
	st.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, st); err != nil {
		return Story{}, err
	}
	return st, nil
}
