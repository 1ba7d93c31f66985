package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"memoria-viva/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listInstancesHandler(svc))
		er.Get("/feed.ics", icsFeedHandler(svc))
		er.Get("/{eventID}", getEventHandler(svc))

		// Cancelar evento (dueño o editor)
		er.Post("/{eventID}/cancel", cancelEventHandler(svc))
	})
}

// createEventRequest es el cuerpo para publicar un evento en la agenda.
type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category" enums:"festival,market,workshop,music,heritage,other"`
	Location    string `json:"location"`

	StartsAt string `json:"starts_at"`          // RFC3339
	EndsAt   string `json:"ends_at,omitempty"`  // RFC3339, opcional

	Recurring         bool     `json:"recurring"`
	RecurrencePattern string   `json:"recurrence_pattern,omitempty" enums:"daily,weekly,fortnightly,monthly"`
	RecurrenceEndDate string   `json:"recurrence_end_date,omitempty"` // YYYY-MM-DD
	ExcludedDates     []string `json:"excluded_dates,omitempty"`      // YYYY-MM-DD
}

// eventResponse es la definición de un evento devuelta por la API.
type eventResponse struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Recurring         bool              `json:"recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate string            `json:"recurrence_end_date,omitempty"`
	ExcludedDates     []string          `json:"excluded_dates,omitempty"`

	Status EventStatus `json:"status"`
}

// instanceResponse es una ocurrencia concreta dentro del rango pedido.
type instanceResponse struct {
	EventID  string   `json:"event_id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Location string   `json:"location"`

	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	OriginalStartsAt    time.Time `json:"original_starts_at"`
	InstanceDate        string    `json:"instance_date"`
	IsRecurringInstance bool      `json:"is_recurring_instance"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Publica un evento en la agenda comunitaria. Si es recurrente, el patrón (daily/weekly/fortnightly/monthly) es obligatorio. La ubicación se geocodifica best-effort. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Datos del evento; fechas en RFC3339, fechas de recurrencia en YYYY-MM-DD"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / fechas inválidas / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			http.Error(w, "starts_at must be RFC3339", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			Title:             req.Title,
			Description:       req.Description,
			Category:          Category(req.Category),
			Location:          req.Location,
			StartsAt:          startsAt,
			Recurring:         req.Recurring,
			RecurrencePattern: RecurrencePattern(req.RecurrencePattern),
		}

		if strings.TrimSpace(req.EndsAt) != "" {
			t, err := time.Parse(time.RFC3339, req.EndsAt)
			if err != nil {
				http.Error(w, "ends_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.EndsAt = &t
		}
		if strings.TrimSpace(req.RecurrenceEndDate) != "" {
			d, err := time.ParseInLocation(dateLayout, req.RecurrenceEndDate, startsAt.Location())
			if err != nil {
				http.Error(w, "recurrence_end_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.RecurrenceEndDate = &d
		}
		for _, s := range req.ExcludedDates {
			d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), startsAt.Location())
			if err != nil {
				http.Error(w, "excluded_dates must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.ExcludedDates = append(in.ExcludedDates, d)
		}

		e, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listInstancesHandler godoc
// @Summary Listar ocurrencias de la agenda
// @Description Expande los eventos activos a ocurrencias concretas dentro de [from, to]. Eventos recurrentes se proyectan respetando exclusiones y fecha de fin; máximo 365 ocurrencias por evento.
// @Tags events
// @Produce json
// @Param from query string true "Inicio del rango (RFC3339)"
// @Param to query string true "Fin del rango (RFC3339)"
// @Param category query string false "Filtrar por categoría"
// @Success 200 {array} instanceResponse
// @Failure 400 {string} string "rango inválido"
// @Failure 500 {string} string "internal error"
// @Router /events [get]
func listInstancesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
		if err != nil {
			http.Error(w, "from must be RFC3339", http.StatusBadRequest)
			return
		}
		to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
		if err != nil {
			http.Error(w, "to must be RFC3339", http.StatusBadRequest)
			return
		}
		if to.Before(from) {
			http.Error(w, "to must not be before from", http.StatusBadRequest)
			return
		}

		category := Category(strings.TrimSpace(r.URL.Query().Get("category")))

		items, err := svc.ListInstances(r.Context(), from, to, category)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]instanceResponse, 0, len(items))
		for _, inst := range items {
			out = append(out, toInstanceResponse(inst))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// icsFeedHandler godoc
// @Summary Feed iCalendar
// @Description Devuelve los eventos activos como calendario ICS. Los recurrentes llevan RRULE/EXDATE en vez de expandirse.
// @Tags events
// @Produce plain
// @Success 200 {string} string "text/calendar"
// @Failure 500 {string} string "internal error"
// @Router /events/feed.ics [get]
func icsFeedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := svc.ListActive(r.Context(), ListFilter{})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(BuildICS(evs)))
	}
}

// getEventHandler godoc
// @Summary Ver definición de un evento
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// cancelEventHandler godoc
// @Summary Cancelar un evento
// @Description Cancela un evento de la agenda. Solo el dueño o un editor.
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/cancel [post]
func cancelEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		if e.OwnerUserID != claims.UserID && !claims.IsEditor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		updated, err := svc.Cancel(r.Context(), e.ID)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(updated))
	}
}

func toEventResponse(e Event) eventResponse {
	resp := eventResponse{
		ID:          e.ID,
		OwnerUserID: e.OwnerUserID,

		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		Location:    e.Location,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,

		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,

		Recurring:         e.Recurring,
		RecurrencePattern: e.RecurrencePattern,

		Status: e.Status,
	}

	if e.RecurrenceEndDate != nil {
		resp.RecurrenceEndDate = e.RecurrenceEndDate.Format(dateLayout)
	}
	for _, d := range e.ExcludedDates {
		resp.ExcludedDates = append(resp.ExcludedDates, d.Format(dateLayout))
	}

	return resp
}

func toInstanceResponse(inst Instance) instanceResponse {
	return instanceResponse{
		EventID:  inst.Event.ID,
		Title:    inst.Event.Title,
		Category: inst.Event.Category,
		Location: inst.Event.Location,

		StartsAt: inst.StartsAt,
		EndsAt:   inst.EndsAt,

		OriginalStartsAt:    inst.OriginalStartsAt,
		InstanceDate:        inst.InstanceDate,
		IsRecurringInstance: inst.IsRecurringInstance,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
