package polls

import "time"

type PollStatus string

const (
	StatusOpen   PollStatus = "open"
	StatusClosed PollStatus = "closed"
)

// Poll es una encuesta corta creada por el equipo editorial.
type Poll struct {
	ID              string
	CreatedByUserID string

	Question string
	Options  []Option

	Status PollStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Option struct {
	ID    string
	Label string
}

// Results mapea option ID -> cantidad de votos.
type Results map[string]int
