package events

import "time"

// Event es la definición de un evento del calendario comunitario.
// Si Recurring es true, la definición es el "ancla": StartsAt/EndsAt
// describen la primera ocurrencia y el resto se proyecta con Expand.
type Event struct {
	ID          string
	OwnerUserID string

	Title       string
	Description string
	Category    Category

	Location  string
	Latitude  *float64
	Longitude *float64

	StartsAt time.Time
	EndsAt   *time.Time

	Recurring         bool
	RecurrencePattern RecurrencePattern
	// RecurrenceEndDate es solo fecha (sin hora); última fecha en la que
	// puede arrancar una ocurrencia.
	RecurrenceEndDate *time.Time
	// ExcludedDates son fechas (sin hora) en las que se suprime la ocurrencia.
	ExcludedDates []time.Time

	Status EventStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Instance es una ocurrencia concreta de un evento dentro de un rango.
// Copia el payload de la definición; StartsAt/EndsAt del nivel externo
// son los de esta ocurrencia en particular.
type Instance struct {
	Event

	StartsAt time.Time
	EndsAt   *time.Time

	OriginalStartsAt    time.Time
	InstanceDate        string // YYYY-MM-DD en el calendario del ancla
	IsRecurringInstance bool
}
