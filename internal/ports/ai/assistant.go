package ai

import "context"

// ModerationResult es el veredicto del proveedor sobre un texto.
// Flagged no rechaza nada por sí solo; solo marca para revisión editorial.
type ModerationResult struct {
	Flagged bool
	Reason  string
}

// Assistant agrupa las operaciones de IA que usa el módulo de relatos.
type Assistant interface {
	// Enhance limpia ortografía/gramática sin cambiar la voz del autor.
	Enhance(ctx context.Context, text string) (string, error)

	// Summarize genera un resumen corto (para digests y listados).
	Summarize(ctx context.Context, text string) (string, error)

	// Moderate evalúa si el texto necesita revisión extra.
	Moderate(ctx context.Context, text string) (ModerationResult, error)
}
