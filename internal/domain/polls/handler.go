package polls

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memoria-viva/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/polls", func(pr chi.Router) {
		pr.Post("/", createPollHandler(svc))
		pr.Get("/", listPollsHandler(svc))
		pr.Get("/{pollID}", getPollHandler(svc))
		pr.Post("/{pollID}/vote", voteHandler(svc))
		pr.Get("/{pollID}/results", resultsHandler(svc))
		pr.Post("/{pollID}/close", closePollHandler(svc))
	})
}

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type voteRequest struct {
	OptionID string `json:"option_id"`
}

type optionResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type pollResponse struct {
	ID       string           `json:"id"`
	Question string           `json:"question"`
	Options  []optionResponse `json:"options"`
	Status   PollStatus       `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

type resultsResponse struct {
	PollID string         `json:"poll_id"`
	Votes  map[string]int `json:"votes"` // option_id -> cantidad
}

// createPollHandler godoc
// @Summary Crear encuesta
// @Description Crea una encuesta con 2 a 10 opciones. Solo editores.
// @Tags polls
// @Accept json
// @Produce json
// @Param payload body createPollRequest true "Pregunta y opciones"
// @Success 201 {object} pollResponse
// @Failure 400 {string} string "invalid json / opciones fuera de rango"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /polls [post]
func createPollHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsEditor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createPollRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Question: req.Question,
			Options:  req.Options,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toPollResponse(p))
	}
}

// listPollsHandler godoc
// @Summary Listar encuestas
// @Tags polls
// @Produce json
// @Param limit query int false "Máximo (1-50). Por defecto 20"
// @Success 200 {array} pollResponse
// @Failure 500 {string} string "internal error"
// @Router /polls [get]
func listPollsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
				limit = n
			}
		}

		items, err := svc.List(r.Context(), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]pollResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPollResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPollHandler godoc
// @Summary Ver una encuesta
// @Tags polls
// @Produce json
// @Param pollID path string true "ID de la encuesta"
// @Success 200 {object} pollResponse
// @Failure 404 {string} string "poll not found"
// @Router /polls/{pollID} [get]
func getPollHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "pollID"))
		if err != nil {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPollResponse(p))
	}
}

// voteHandler godoc
// @Summary Votar
// @Description Un voto por usuario; votar de nuevo reemplaza el anterior.
// @Tags polls
// @Accept json
// @Param pollID path string true "ID de la encuesta"
// @Param payload body voteRequest true "Opción elegida"
// @Success 204 {string} string ""
// @Failure 400 {string} string "invalid json / opción desconocida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "poll not found"
// @Failure 409 {string} string "poll is closed"
// @Router /polls/{pollID}/vote [post]
func voteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req voteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := svc.Vote(r.Context(), chi.URLParam(r, "pollID"), req.OptionID, claims.UserID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrPollClosed):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrUnknownOption), errors.Is(err, ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "poll not found", http.StatusNotFound)
		}
	}
}

// resultsHandler godoc
// @Summary Resultados de una encuesta
// @Tags polls
// @Produce json
// @Param pollID path string true "ID de la encuesta"
// @Success 200 {object} resultsResponse
// @Failure 404 {string} string "poll not found"
// @Router /polls/{pollID}/results [get]
func resultsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollID := chi.URLParam(r, "pollID")
		res, err := svc.Results(r.Context(), pollID)
		if err != nil {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, resultsResponse{PollID: pollID, Votes: res})
	}
}

// closePollHandler godoc
// @Summary Cerrar una encuesta
// @Description Solo editores. Cerrar dos veces es idempotente.
// @Tags polls
// @Produce json
// @Param pollID path string true "ID de la encuesta"
// @Success 200 {object} pollResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "poll not found"
// @Router /polls/{pollID}/close [post]
func closePollHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsEditor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.Close(r.Context(), chi.URLParam(r, "pollID"))
		if err != nil {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPollResponse(p))
	}
}

func toPollResponse(p Poll) pollResponse {
	opts := make([]optionResponse, 0, len(p.Options))
	for _, o := range p.Options {
		opts = append(opts, optionResponse{ID: o.ID, Label: o.Label})
	}
	return pollResponse{
		ID:        p.ID,
		Question:  p.Question,
		Options:   opts,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
