package stories

import "time"

// Story es un relato en primera persona sobre la cultura de la región.
// Nace pending y pasa a published/rejected por decisión editorial.
type Story struct {
	ID           string
	AuthorUserID string
	AuthorName   string

	Title    string
	Body     string
	Category Category

	// Summary es el resumen corto generado por IA (para listados y digest).
	Summary string

	Status       StoryStatus
	RejectReason string

	// Flagged lo marca la moderación automática; no rechaza, solo avisa
	// al equipo editorial.
	Flagged    bool
	FlagReason string

	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment es un comentario de un lector sobre un relato publicado.
type Comment struct {
	ID           string
	StoryID      string
	AuthorUserID string
	Body         string

	CreatedAt time.Time
}
