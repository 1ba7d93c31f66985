// @title Memoria Viva API
// @version 1.0
// @description Plataforma comunitaria de historias, eventos y memoria local.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memoria-viva/internal/adapters/ai/openai"
	"memoria-viva/internal/adapters/auth/supabase"
	"memoria-viva/internal/adapters/email/resend"
	"memoria-viva/internal/adapters/geocode/nominatim"
	"memoria-viva/internal/adapters/linkpreview/microlink"
	"memoria-viva/internal/adapters/storage/postgres"
	"memoria-viva/internal/config"
	"memoria-viva/internal/domain/digests"
	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/ai"
	"memoria-viva/internal/ports/auth"
	"memoria-viva/internal/ports/email"
	"memoria-viva/internal/ports/geocode"
	"memoria-viva/internal/ports/linkpreview"
	"memoria-viva/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("el servicio terminó con error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	opts := router.Options{Log: log}

	// Postgres si hay DSN; si no, repos in-memory (dev).
	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := postgres.Migrate(ctx, db, cfg.MigrationsPath)
			cancel()
			if err != nil {
				return err
			}
			log.Info("migraciones aplicadas", map[string]any{"path": cfg.MigrationsPath})
		}
		opts.DB = db
	} else {
		log.Warn("sin DB_DSN: usando almacenamiento in-memory (solo dev)", nil)
	}

	opts.AuthVerifier = buildVerifier(cfg, log)
	opts.Assistant = buildAssistant(cfg, log)
	opts.EmailSender = buildSender(cfg, log)
	opts.Geocoder = buildGeocoder(cfg)
	opts.LinkResolver = buildResolver(cfg)

	rt := router.New(opts)

	// Cron del digest semanal.
	if cfg.DigestEnabled {
		sched := digests.NewScheduler(rt.Digests, log)
		if err := sched.Start(cfg.DigestCron); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rt.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("servidor escuchando", map[string]any{"addr": srv.Addr, "env": cfg.Environment})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("apagando por señal", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Los builders devuelven nil cuando falta configuración: el módulo
// correspondiente degrada en vez de romper el arranque.

func buildVerifier(cfg *config.Config, log logger.Logger) auth.AuthVerifier {
	client := supabase.NewClient(supabase.Config{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
		Timeout: cfg.HTTPTimeout,
	})
	if !client.IsConfigured() {
		if cfg.IsProduction() {
			log.Warn("supabase sin configurar en producción: auth en modo dev", nil)
		}
		return nil
	}
	return supabase.NewVerifier(client)
}

func buildAssistant(cfg *config.Config, log logger.Logger) ai.Assistant {
	client := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if !client.IsConfigured() {
		log.Info("sin OPENAI_API_KEY: mejoras/resúmenes/moderación desactivados", nil)
		return nil
	}
	return client
}

func buildSender(cfg *config.Config, log logger.Logger) email.Sender {
	client := resend.NewClient(resend.Config{
		APIKey:  cfg.ResendAPIKey,
		From:    cfg.EmailFrom,
		Timeout: cfg.HTTPTimeout,
	})
	if !client.IsConfigured() {
		log.Info("sin RESEND_API_KEY: envío de digest desactivado", nil)
		return nil
	}
	return client
}

func buildGeocoder(cfg *config.Config) geocode.Geocoder {
	return nominatim.NewClient(nominatim.Config{
		BaseURL: cfg.NominatimBaseURL,
		Timeout: cfg.HTTPTimeout,
	})
}

func buildResolver(cfg *config.Config) linkpreview.Resolver {
	return microlink.NewClient(microlink.Config{
		BaseURL: cfg.MicrolinkBaseURL,
		APIKey:  cfg.MicrolinkAPIKey,
		Timeout: cfg.HTTPTimeout,
	})
}
