package events

import "time"

const (
	// maxInstancesPerEvent limita el trabajo por evento en una expansión.
	// Es una válvula de seguridad (recurrencia diaria sin fin + rango de
	// varios años), no un límite de producto: para más de un año de
	// ocurrencias diarias se consulta con rangos más angostos.
	maxInstancesPerEvent = 365

	dateLayout = "2006-01-02"
)

// Expand proyecta la definición de un evento a sus ocurrencias concretas
// que intersectan [rangeStart, rangeEnd].
//
// Un evento no recurrente devuelve siempre exactamente una instancia,
// caiga o no dentro del rango: el filtrado del caso simple es del caller.
//
// Para eventos recurrentes: se avanza desde el ancla según el patrón,
// respetando ExcludedDates y RecurrenceEndDate (inclusive, fin de día).
// Una ocurrencia que empieza antes del rango pero cuya duración pisa el
// inicio del rango también se incluye. Las ocurrencias saltadas (fuera de
// rango o excluidas) igual avanzan el cursor y cuentan contra el tope,
// así que un rango futuro angosto sobre una recurrencia diaria larga
// puede agotar el tope sin emitir nada; es responsabilidad del caller
// consultar rangos razonables.
//
// La función es pura: no muta el evento y no falla.
func Expand(ev Event, rangeStart, rangeEnd time.Time) []Instance {
	if !ev.Recurring || !ev.RecurrencePattern.Valid() {
		inst := Instance{
			Event:               ev,
			StartsAt:            ev.StartsAt,
			EndsAt:              ev.EndsAt,
			OriginalStartsAt:    ev.StartsAt,
			InstanceDate:        ev.StartsAt.Format(dateLayout),
			IsRecurringInstance: false,
		}
		return []Instance{inst}
	}

	var duration time.Duration
	if ev.EndsAt != nil {
		duration = ev.EndsAt.Sub(ev.StartsAt)
	}

	excluded := make(map[string]struct{}, len(ev.ExcludedDates))
	for _, d := range ev.ExcludedDates {
		excluded[d.Format(dateLayout)] = struct{}{}
	}

	loc := ev.StartsAt.Location()

	// Fin de la recurrencia: la fecha configurada a fin de día, o un
	// default finito más allá de cualquier rango razonable.
	var recurrenceEnd time.Time
	if ev.RecurrenceEndDate != nil {
		d := *ev.RecurrenceEndDate
		recurrenceEnd = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	} else {
		recurrenceEnd = time.Date(rangeEnd.Year()+1, time.December, 31, 23, 59, 59, 0, rangeEnd.Location())
	}

	out := make([]Instance, 0)
	current := ev.StartsAt

	for count := 0; count < maxInstancesPerEvent && !current.After(recurrenceEnd) && !current.After(rangeEnd); count++ {
		include := !current.Before(rangeStart)
		if !include && duration > 0 {
			// Empezó antes del rango pero todavía está en curso al inicio.
			include = !current.Add(duration).Before(rangeStart)
		}

		if include {
			dateKey := current.Format(dateLayout)
			if _, skip := excluded[dateKey]; !skip {
				// Re-anclar la hora del día evita drift de la aritmética
				// de calendario (p.ej. corrimientos por DST).
				start := time.Date(
					current.Year(), current.Month(), current.Day(),
					ev.StartsAt.Hour(), ev.StartsAt.Minute(), ev.StartsAt.Second(),
					0, loc,
				)

				inst := Instance{
					Event:               ev,
					StartsAt:            start,
					OriginalStartsAt:    ev.StartsAt,
					InstanceDate:        dateKey,
					IsRecurringInstance: count > 0,
				}
				if duration > 0 {
					end := start.Add(duration)
					inst.EndsAt = &end
				}
				out = append(out, inst)
			}
		}

		current = nextOccurrence(current, ev.RecurrencePattern)
	}

	return out
}

// ExpandAll aplica Expand a cada evento y concatena en el orden de entrada.
// No deduplica entre eventos; dentro de cada evento el orden es cronológico.
func ExpandAll(evs []Event, rangeStart, rangeEnd time.Time) []Instance {
	out := make([]Instance, 0, len(evs))
	for _, ev := range evs {
		out = append(out, Expand(ev, rangeStart, rangeEnd)...)
	}
	return out
}

// nextOccurrence avanza a la siguiente ocurrencia según el patrón.
// En monthly se usa el overflow nativo de AddDate: un ancla en día 31
// puede "derramar" al mes siguiente cuando el mes es más corto.
func nextOccurrence(t time.Time, p RecurrencePattern) time.Time {
	switch p {
	case PatternDaily:
		return t.AddDate(0, 0, 1)
	case PatternWeekly:
		return t.AddDate(0, 0, 7)
	case PatternFortnightly:
		return t.AddDate(0, 0, 14)
	case PatternMonthly:
		return t.AddDate(0, 1, 0)
	default:
		// Expand no llega acá: patrones inválidos toman el camino no recurrente.
		return t.AddDate(0, 0, 1)
	}
}
