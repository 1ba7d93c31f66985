package digests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"memoria-viva/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/digest", func(dr chi.Router) {
		dr.Post("/subscribe", subscribeHandler(svc))
		dr.Post("/unsubscribe", unsubscribeHandler(svc))

		// Disparo manual (solo editores)
		dr.Post("/send", sendDigestHandler(svc))
	})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// subscribeHandler godoc
// @Summary Suscribirse al digest semanal
// @Description Registra un email para recibir el resumen semanal de historias y eventos. Repetir la suscripción no es error.
// @Tags digest
// @Accept json
// @Produce json
// @Param payload body subscribeRequest true "Email a suscribir"
// @Success 204 {string} string "suscrito"
// @Failure 400 {string} string "invalid email"
// @Router /digest/subscribe [post]
func subscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := svc.Subscribe(r.Context(), req.Email); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "invalid email", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// unsubscribeHandler godoc
// @Summary Darse de baja del digest
// @Tags digest
// @Accept json
// @Produce json
// @Param payload body subscribeRequest true "Email a dar de baja"
// @Success 204 {string} string "baja procesada"
// @Failure 400 {string} string "invalid email"
// @Router /digest/unsubscribe [post]
func unsubscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := svc.Unsubscribe(r.Context(), req.Email); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "invalid email", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type sendDigestResponse struct {
	Sent int `json:"sent"`
}

// sendDigestHandler godoc
// @Summary Enviar el digest ahora
// @Description Fuerza el envío del digest a todos los suscriptores, fuera del horario programado. Solo editores.
// @Tags digest
// @Produce json
// @Success 200 {object} sendDigestResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 503 {string} string "email sender not configured"
// @Router /digest/send [post]
func sendDigestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditor(w, r) {
			return
		}

		sent, err := svc.Send(r.Context())
		if err != nil {
			if errors.Is(err, ErrNoSender) {
				http.Error(w, "email sender not configured", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sendDigestResponse{Sent: sent})
	}
}

func requireEditor(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !claims.IsEditor() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
