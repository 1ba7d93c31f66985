package linkpreviews

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/linkpreview"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoResolver    = errors.New("link preview resolver not configured")
	ErrResolveFailed = errors.New("link preview resolve failed")
)

const defaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	preview   linkpreview.Preview
	expiresAt time.Time
}

// Service resuelve previews de links externos con un cache en memoria,
// para no golpear al proveedor por cada render del front.
type Service struct {
	resolver linkpreview.Resolver // puede ser nil
	ttl      time.Duration
	log      logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewService(resolver linkpreview.Resolver, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		resolver: resolver,
		ttl:      defaultCacheTTL,
		log:      log,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

func (s *Service) Resolve(ctx context.Context, target string) (linkpreview.Preview, error) {
	target = strings.TrimSpace(target)
	u, err := url.ParseRequestURI(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return linkpreview.Preview{}, ErrInvalidInput
	}
	if s.resolver == nil {
		return linkpreview.Preview{}, ErrNoResolver
	}

	if p, ok := s.cached(target); ok {
		return p, nil
	}

	p, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		s.log.Warn("no se pudo resolver preview", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return linkpreview.Preview{}, ErrResolveFailed
	}

	s.mu.Lock()
	s.cache[target] = cacheEntry{preview: p, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return p, nil
}

func (s *Service) cached(target string) (linkpreview.Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[target]
	if !ok || s.now().After(e.expiresAt) {
		return linkpreview.Preview{}, false
	}
	return e.preview, true
}
