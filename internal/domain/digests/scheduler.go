package digests

import (
	"context"
	"fmt"
	"time"

	"memoria-viva/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler dispara el envío del digest según una expresión cron
// de cinco campos (p. ej. "0 8 * * 1" = lunes 08:00).
type Scheduler struct {
	cron *cron.Cron
	svc  *Service
	log  logger.Logger
}

func NewScheduler(svc *Service, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}
}

func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := s.svc.Send(ctx); err != nil {
			s.log.Error("envío programado del digest falló", map[string]any{"error": err.Error()})
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("digest programado", map[string]any{"cron": spec})
	return nil
}

// Stop detiene el cron y espera a que termine un envío en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
