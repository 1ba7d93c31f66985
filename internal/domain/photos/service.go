package photos

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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

type SubmitInput struct {
	Caption  string
	Era      string
	Location string
	ImageURL string
}

func (s *Service) Submit(ctx context.Context, submitterUserID string, in SubmitInput) (Photo, error) {
	if strings.TrimSpace(submitterUserID) == "" {
		return Photo{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Caption) == "" {
		return Photo{}, ErrInvalidInput
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	u, err := url.ParseRequestURI(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Photo{}, ErrInvalidInput
	}

	now := s.now()
	p := Photo{
		ID:              uuid.NewString(),
		SubmitterUserID: submitterUserID,
		Caption:         strings.TrimSpace(in.Caption),
		Era:             strings.TrimSpace(in.Era),
		Location:        strings.TrimSpace(in.Location),
		ImageURL:        imageURL,
		Status:          StatusVisible,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Photo{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Photo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Photo{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, featuredOnly bool, limit int) ([]Photo, error) {
	return s.repo.List(ctx, featuredOnly, limit)
}

func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) (Photo, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Photo{}, err
	}

	p.Featured = featured
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Photo{}, err
	}
	return p, nil
}

// Hide saca la foto del listado público sin borrarla.
func (s *Service) Hide(ctx context.Context, id string) (Photo, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Photo{}, err
	}

	p.Status = StatusHidden
	p.Featured = false
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Photo{}, err
	}
	return p, nil
}
