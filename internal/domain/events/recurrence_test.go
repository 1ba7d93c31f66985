package events

import (
	"reflect"
	"testing"
	"time"
)

func ts(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func weeklyMondayEvent() Event {
	return Event{
		ID:                "ev-weekly",
		OwnerUserID:       "owner-1",
		Title:             "Peña folklórica",
		Category:          CategoryMusic,
		StartsAt:          ts(2025, time.June, 2, 18, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternWeekly,
		Status:            EventStatusActive,
	}
}

func TestExpand_NonRecurring_SingleInstance(t *testing.T) {
	ends := ts(2025, time.March, 10, 21, 0, 0)
	ev := Event{
		ID:       "ev-1",
		Title:    "Charla de historia local",
		StartsAt: ts(2025, time.March, 10, 19, 0, 0),
		EndsAt:   &ends,
	}

	got := Expand(ev, ts(2025, time.March, 1, 0, 0, 0), ts(2025, time.March, 31, 23, 59, 59))
	if len(got) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(got))
	}

	inst := got[0]
	if inst.IsRecurringInstance {
		t.Fatalf("non-recurring instance must not be marked recurring")
	}
	if !inst.StartsAt.Equal(ev.StartsAt) {
		t.Fatalf("starts_at changed: %v", inst.StartsAt)
	}
	if inst.EndsAt == nil || !inst.EndsAt.Equal(ends) {
		t.Fatalf("ends_at changed: %v", inst.EndsAt)
	}
	if !inst.OriginalStartsAt.Equal(ev.StartsAt) {
		t.Fatalf("original_starts_at = %v", inst.OriginalStartsAt)
	}
	if inst.InstanceDate != "2025-03-10" {
		t.Fatalf("instance_date = %q", inst.InstanceDate)
	}
	if inst.Event.Title != ev.Title {
		t.Fatalf("payload not copied: %q", inst.Event.Title)
	}
}

// Un evento no recurrente fuera del rango igual devuelve su única instancia:
// el filtrado de ese caso es del caller.
func TestExpand_NonRecurring_OutsideRange_StillReturned(t *testing.T) {
	ev := Event{ID: "ev-1", StartsAt: ts(2030, time.January, 1, 12, 0, 0)}

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) != 1 {
		t.Fatalf("expected 1 instance regardless of range, got %d", len(got))
	}
	if got[0].IsRecurringInstance {
		t.Fatalf("must not be marked recurring")
	}
}

// Recurring=true pero patrón desconocido => camino no recurrente.
func TestExpand_UnknownPattern_TreatedAsNonRecurring(t *testing.T) {
	ev := weeklyMondayEvent()
	ev.RecurrencePattern = "lunar"

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(got))
	}
}

func TestExpand_Weekly_June2025(t *testing.T) {
	got := Expand(weeklyMondayEvent(), ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))

	wantDates := []string{"2025-06-02", "2025-06-09", "2025-06-16", "2025-06-23", "2025-06-30"}
	if len(got) != len(wantDates) {
		t.Fatalf("expected %d instances, got %d", len(wantDates), len(got))
	}

	for i, inst := range got {
		if inst.InstanceDate != wantDates[i] {
			t.Fatalf("instance %d: date = %q, want %q", i, inst.InstanceDate, wantDates[i])
		}
		if inst.StartsAt.Hour() != 18 || inst.StartsAt.Minute() != 0 || inst.StartsAt.Second() != 0 {
			t.Fatalf("instance %d: time of day drifted: %v", i, inst.StartsAt)
		}
		if want := i > 0; inst.IsRecurringInstance != want {
			t.Fatalf("instance %d: is_recurring_instance = %v, want %v", i, inst.IsRecurringInstance, want)
		}
		if !inst.OriginalStartsAt.Equal(ts(2025, time.June, 2, 18, 0, 0)) {
			t.Fatalf("instance %d: original_starts_at = %v", i, inst.OriginalStartsAt)
		}
	}
}

func TestExpand_Daily_WithRecurrenceEndDate(t *testing.T) {
	end := date(2025, time.January, 5)
	ev := Event{
		ID:                "ev-daily",
		StartsAt:          ts(2025, time.January, 1, 9, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternDaily,
		RecurrenceEndDate: &end,
	}

	got := Expand(ev, ts(2025, time.January, 1, 0, 0, 0), ts(2025, time.December, 31, 23, 59, 59))
	if len(got) != 5 {
		t.Fatalf("expected 5 instances (Jan 1-5), got %d", len(got))
	}
	if got[4].InstanceDate != "2025-01-05" {
		t.Fatalf("last instance = %q", got[4].InstanceDate)
	}
}

func TestExpand_Weekly_ExcludedDate(t *testing.T) {
	ev := weeklyMondayEvent()
	ev.ExcludedDates = []time.Time{date(2025, time.June, 16)}

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) != 4 {
		t.Fatalf("expected 4 instances, got %d", len(got))
	}
	for _, inst := range got {
		if inst.InstanceDate == "2025-06-16" {
			t.Fatalf("excluded date was emitted")
		}
	}
}

// Fin de recurrencia anterior al ancla => cero instancias. Es el
// comportamiento pactado, no un bug a "arreglar".
func TestExpand_RecurrenceEndBeforeStart_NoInstances(t *testing.T) {
	end := date(2025, time.May, 1)
	ev := weeklyMondayEvent()
	ev.RecurrenceEndDate = &end

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) != 0 {
		t.Fatalf("expected 0 instances, got %d", len(got))
	}
}

func TestExpand_Fortnightly(t *testing.T) {
	ev := weeklyMondayEvent()
	ev.RecurrencePattern = PatternFortnightly

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	wantDates := []string{"2025-06-02", "2025-06-16", "2025-06-30"}
	if len(got) != len(wantDates) {
		t.Fatalf("expected %d instances, got %d", len(wantDates), len(got))
	}
	for i, inst := range got {
		if inst.InstanceDate != wantDates[i] {
			t.Fatalf("instance %d: %q, want %q", i, inst.InstanceDate, wantDates[i])
		}
	}
}

// Monthly sobre día 31 usa el overflow nativo del calendario: enero 31 + 1
// mes cae en marzo 3 (no hay 31 de febrero). Comportamiento heredado, sin clamp.
func TestExpand_Monthly_Day31_NativeOverflow(t *testing.T) {
	ev := Event{
		ID:                "ev-monthly",
		StartsAt:          ts(2025, time.January, 31, 10, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternMonthly,
	}

	got := Expand(ev, ts(2025, time.January, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	wantDates := []string{"2025-01-31", "2025-03-03", "2025-04-03", "2025-05-03", "2025-06-03"}
	if len(got) != len(wantDates) {
		t.Fatalf("expected %d instances, got %d: %v", len(wantDates), len(got), instanceDates(got))
	}
	for i, inst := range got {
		if inst.InstanceDate != wantDates[i] {
			t.Fatalf("instance %d: %q, want %q", i, inst.InstanceDate, wantDates[i])
		}
	}
}

func TestExpand_DurationPreserved(t *testing.T) {
	ends := ts(2025, time.June, 2, 20, 30, 0) // 2h30m
	ev := weeklyMondayEvent()
	ev.EndsAt = &ends

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) == 0 {
		t.Fatalf("expected instances")
	}
	for i, inst := range got {
		if inst.EndsAt == nil {
			t.Fatalf("instance %d: missing ends_at", i)
		}
		if d := inst.EndsAt.Sub(inst.StartsAt); d != 2*time.Hour+30*time.Minute {
			t.Fatalf("instance %d: duration = %v", i, d)
		}
	}
}

// Ocurrencia que arranca antes del rango pero sigue en curso al inicio
// del rango: se incluye solo si tiene duración.
func TestExpand_OverlapInclusionRule(t *testing.T) {
	rangeStart := ts(2025, time.June, 2, 0, 0, 0)
	rangeEnd := ts(2025, time.June, 3, 23, 59, 59)

	ends := ts(2025, time.June, 1, 23, 0, 0).Add(3 * time.Hour) // termina 02:00 del día 2
	withDuration := Event{
		ID:                "ev-overlap",
		StartsAt:          ts(2025, time.June, 1, 23, 0, 0),
		EndsAt:            &ends,
		Recurring:         true,
		RecurrencePattern: PatternDaily,
	}

	got := Expand(withDuration, rangeStart, rangeEnd)
	if len(got) != 3 {
		t.Fatalf("expected 3 instances (June 1 overlaps, 2 and 3 inside), got %d: %v", len(got), instanceDates(got))
	}
	if got[0].InstanceDate != "2025-06-01" {
		t.Fatalf("overlapping occurrence missing: first = %q", got[0].InstanceDate)
	}

	// Sin duración no hay overlap posible: la del día 1 se salta.
	zeroDuration := withDuration
	zeroDuration.EndsAt = nil

	got = Expand(zeroDuration, rangeStart, rangeEnd)
	if len(got) != 2 {
		t.Fatalf("expected 2 instances without duration, got %d: %v", len(got), instanceDates(got))
	}
	if got[0].InstanceDate != "2025-06-02" {
		t.Fatalf("first = %q, want 2025-06-02", got[0].InstanceDate)
	}
}

func TestExpand_CapAt365(t *testing.T) {
	ev := Event{
		ID:                "ev-cap",
		StartsAt:          ts(2024, time.January, 1, 8, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternDaily,
	}

	got := Expand(ev, ts(2024, time.January, 1, 0, 0, 0), ts(2027, time.December, 31, 23, 59, 59))
	if len(got) != maxInstancesPerEvent {
		t.Fatalf("expected cap of %d, got %d", maxInstancesPerEvent, len(got))
	}
}

// Las ocurrencias saltadas por estar antes del rango también consumen el
// tope: un rango futuro angosto sobre una recurrencia diaria vieja puede
// no emitir nada.
func TestExpand_SkippedOccurrencesCountTowardCap(t *testing.T) {
	ev := Event{
		ID:                "ev-old",
		StartsAt:          ts(2020, time.January, 1, 8, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternDaily,
	}

	got := Expand(ev, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 30, 23, 59, 59))
	if len(got) != 0 {
		t.Fatalf("expected 0 instances (cap exhausted before range), got %d", len(got))
	}
}

func TestExpand_Idempotent(t *testing.T) {
	ev := weeklyMondayEvent()
	ev.ExcludedDates = []time.Time{date(2025, time.June, 9)}
	rangeStart := ts(2025, time.June, 1, 0, 0, 0)
	rangeEnd := ts(2025, time.June, 30, 23, 59, 59)

	a := Expand(ev, rangeStart, rangeEnd)
	b := Expand(ev, rangeStart, rangeEnd)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expand is not deterministic")
	}
}

func TestExpand_ChronologicalOrder(t *testing.T) {
	got := Expand(weeklyMondayEvent(), ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.August, 31, 23, 59, 59))
	for i := 1; i < len(got); i++ {
		if !got[i].StartsAt.After(got[i-1].StartsAt) {
			t.Fatalf("instances out of order at %d: %v then %v", i, got[i-1].StartsAt, got[i].StartsAt)
		}
	}
}

// El re-anclaje de hora protege la hora de reloj frente a cambios de DST.
func TestExpand_DSTKeepsClockTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	// Chile adelanta el reloj la primera semana de septiembre de 2025.
	ev := Event{
		ID:                "ev-dst",
		StartsAt:          time.Date(2025, time.August, 25, 18, 0, 0, 0, loc),
		Recurring:         true,
		RecurrencePattern: PatternWeekly,
	}

	got := Expand(ev,
		time.Date(2025, time.August, 25, 0, 0, 0, 0, loc),
		time.Date(2025, time.September, 30, 23, 59, 59, 0, loc),
	)
	if len(got) == 0 {
		t.Fatalf("expected instances")
	}
	for i, inst := range got {
		if inst.StartsAt.Hour() != 18 {
			t.Fatalf("instance %d (%s): clock time drifted to %v", i, inst.InstanceDate, inst.StartsAt)
		}
	}
}

func TestExpandAll_GroupedByEventInInputOrder(t *testing.T) {
	first := weeklyMondayEvent()
	second := Event{
		ID:                "ev-daily",
		StartsAt:          ts(2025, time.June, 10, 9, 0, 0),
		Recurring:         true,
		RecurrencePattern: PatternDaily,
	}

	got := ExpandAll([]Event{first, second}, ts(2025, time.June, 1, 0, 0, 0), ts(2025, time.June, 12, 23, 59, 59))

	// Primero todas las del weekly, después todas las del daily, aunque
	// cronológicamente se intercalen.
	sawSecond := false
	for _, inst := range got {
		switch inst.Event.ID {
		case second.ID:
			sawSecond = true
		case first.ID:
			if sawSecond {
				t.Fatalf("instances not grouped by source event")
			}
		}
	}
	if !sawSecond {
		t.Fatalf("missing instances for second event")
	}
}

func instanceDates(insts []Instance) []string {
	out := make([]string, 0, len(insts))
	for _, i := range insts {
		out = append(out, i.InstanceDate)
	}
	return out
}
