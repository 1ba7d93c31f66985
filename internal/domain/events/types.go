package events

// RecurrencePattern es el período fijo entre ocurrencias de un evento.
type RecurrencePattern string

const (
	PatternDaily       RecurrencePattern = "daily"
	PatternWeekly      RecurrencePattern = "weekly"
	PatternFortnightly RecurrencePattern = "fortnightly"
	PatternMonthly     RecurrencePattern = "monthly"
)

// Valid reporta si el patrón es uno de los soportados.
// Un patrón vacío o desconocido se trata como "sin recurrencia".
func (p RecurrencePattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternFortnightly, PatternMonthly:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryFestival Category = "festival"
	CategoryMarket   Category = "market"
	CategoryWorkshop Category = "workshop"
	CategoryMusic    Category = "music"
	CategoryHeritage Category = "heritage"
	CategoryOther    Category = "other"
)

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)
