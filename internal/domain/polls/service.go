package polls

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrPollClosed    = errors.New("poll is closed")
	ErrUnknownOption = errors.New("unknown option")
)

const (
	minOptions = 2
	maxOptions = 10
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Question string
	Options  []string
}

func (s *Service) Create(ctx context.Context, createdByUserID string, in CreateInput) (Poll, error) {
	if strings.TrimSpace(createdByUserID) == "" {
		return Poll{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Question) == "" {
		return Poll{}, ErrInvalidInput
	}

	opts := make([]Option, 0, len(in.Options))
	for _, label := range in.Options {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		opts = append(opts, Option{ID: uuid.NewString(), Label: label})
	}
	if len(opts) < minOptions || len(opts) > maxOptions {
		return Poll{}, ErrInvalidInput
	}

	now := s.now()
	p := Poll{
		ID:              uuid.NewString(),
		CreatedByUserID: createdByUserID,
		Question:        strings.TrimSpace(in.Question),
		Options:         opts,
		Status:          StatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Poll{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Poll, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Poll{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Poll, error) {
	return s.repo.List(ctx, limit)
}

// Vote valida encuesta abierta + opción existente. Re-votar reemplaza.
func (s *Service) Vote(ctx context.Context, pollID, optionID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return err
	}
	if p.Status != StatusOpen {
		return ErrPollClosed
	}

	found := false
	for _, o := range p.Options {
		if o.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownOption
	}

	return s.repo.Vote(ctx, p.ID, optionID, userID)
}

func (s *Service) Results(ctx context.Context, pollID string) (Results, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Results(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	// Opciones sin votos aparecen en cero.
	for _, o := range p.Options {
		if _, ok := res[o.ID]; !ok {
			res[o.ID] = 0
		}
	}
	return res, nil
}

func (s *Service) Close(ctx context.Context, pollID string) (Poll, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return Poll{}, err
	}
	if p.Status == StatusClosed {
		return p, nil
	}

	p.Status = StatusClosed
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Poll{}, err
	}
	return p, nil
}
