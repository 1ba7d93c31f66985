package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/geocode"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo     Repository
	geocoder geocode.Geocoder // puede ser nil
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, geocoder geocode.Geocoder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	Title       string
	Description string
	Category    Category
	Location    string

	StartsAt time.Time
	EndsAt   *time.Time

	Recurring         bool
	RecurrencePattern RecurrencePattern
	RecurrenceEndDate *time.Time
	ExcludedDates     []time.Time
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Event, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Event{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, ErrInvalidInput
	}
	if in.StartsAt.IsZero() {
		return Event{}, ErrInvalidInput
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return Event{}, ErrInvalidInput
	}
	if in.Recurring && !in.RecurrencePattern.Valid() {
		return Event{}, ErrInvalidInput
	}

	cat := in.Category
	if cat == "" {
		cat = CategoryOther
	}

	now := s.now()
	e := Event{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,

		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    cat,
		Location:    strings.TrimSpace(in.Location),

		StartsAt: in.StartsAt,
		EndsAt:   in.EndsAt,

		Recurring:         in.Recurring,
		RecurrencePattern: in.RecurrencePattern,
		RecurrenceEndDate: in.RecurrenceEndDate,
		ExcludedDates:     in.ExcludedDates,

		Status:    EventStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Geocoding best-effort: si falla, el evento se crea igual sin coords.
	if s.geocoder != nil && e.Location != "" {
		if pt, err := s.geocoder.Geocode(ctx, e.Location); err == nil {
			e.Latitude = &pt.Lat
			e.Longitude = &pt.Lng
		} else if !errors.Is(err, geocode.ErrNoResult) {
			s.log.Warn("geocode failed", map[string]any{"location": e.Location, "err": err.Error()})
		}
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListInstances trae los eventos activos y los proyecta a ocurrencias
// concretas dentro de [from, to].
func (s *Service) ListInstances(ctx context.Context, from, to time.Time, category Category) ([]Instance, error) {
	evs, err := s.repo.ListActive(ctx, ListFilter{Category: category})
	if err != nil {
		return nil, err
	}
	return ExpandAll(evs, from, to), nil
}

// ListActive expone las definiciones sin expandir (feed ICS, admin).
func (s *Service) ListActive(ctx context.Context, filter ListFilter) ([]Event, error) {
	return s.repo.ListActive(ctx, filter)
}

func (s *Service) Cancel(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return Event{}, err
	}
	return s.repo.GetByID(ctx, id)
}
