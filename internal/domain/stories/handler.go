package stories

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
	r.Route("/stories", func(sr chi.Router) {
		sr.Post("/", submitStoryHandler(svc))
		sr.Get("/", listPublishedHandler(svc))
		sr.Get("/{storyID}", getStoryHandler(svc))

		// Decisión editorial
		sr.Post("/{storyID}/publish", publishStoryHandler(svc))
		sr.Post("/{storyID}/reject", rejectStoryHandler(svc))

		sr.Post("/{storyID}/like", likeStoryHandler(svc))
		sr.Delete("/{storyID}/like", unlikeStoryHandler(svc))

		sr.Post("/{storyID}/comments", addCommentHandler(svc))
		sr.Get("/{storyID}/comments", listCommentsHandler(svc))
		sr.Delete("/{storyID}/comments/{commentID}", removeCommentHandler(svc))

		// Asistencia de IA
		sr.Post("/{storyID}/enhance", enhanceStoryHandler(svc))
		sr.Post("/{storyID}/summarize", summarizeStoryHandler(svc))
	})

	r.Get("/me/stories", listMyStoriesHandler(svc))
	r.Get("/editorial/stories", listPendingHandler(svc))
}

// submitStoryRequest es el cuerpo para enviar un relato a revisión.
type submitStoryRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Category   string `json:"category" enums:"traditions,food,places,people,work,other"`
	AuthorName string `json:"author_name"`
}

type rejectStoryRequest struct {
	Reason string `json:"reason"`
}

type addCommentRequest struct {
	Body string `json:"body"`
}

// storyResponse representa un relato devuelto por la API.
type storyResponse struct {
	ID           string `json:"id"`
	AuthorUserID string `json:"author_user_id"`
	AuthorName   string `json:"author_name,omitempty"`

	Title    string   `json:"title"`
	Body     string   `json:"body,omitempty"`
	Category Category `json:"category"`
	Summary  string   `json:"summary,omitempty"`

	Status       StoryStatus `json:"status"`
	RejectReason string      `json:"reject_reason,omitempty"`
	Flagged      bool        `json:"flagged,omitempty"`
	FlagReason   string      `json:"flag_reason,omitempty"`

	LikeCount int `json:"like_count"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type commentResponse struct {
	ID           string    `json:"id"`
	StoryID      string    `json:"story_id"`
	AuthorUserID string    `json:"author_user_id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

type enhanceResponse struct {
	Original string `json:"original"`
	Enhanced string `json:"enhanced"`
}

// submitStoryHandler godoc
// @Summary Enviar un relato
// @Description Registra un relato en primera persona y lo deja en cola de revisión editorial. La moderación automática solo marca (flag), nunca rechaza. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags stories
// @Accept json
// @Produce json
// @Param payload body submitStoryRequest true "Datos del relato"
// @Success 201 {object} storyResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /stories [post]
func submitStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitStoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			Title:      req.Title,
			Body:       req.Body,
			Category:   Category(req.Category),
			AuthorName: req.AuthorName,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toStoryResponse(st, 0, true))
	}
}

// listPublishedHandler godoc
// @Summary Listar relatos publicados
// @Description Listado público con filtro por categoría, búsqueda de texto libre y límite.
// @Tags stories
// @Produce json
// @Param category query string false "Categoría"
// @Param q query string false "Texto de búsqueda en título/cuerpo"
// @Param limit query int false "Máximo de relatos (1-100). Por defecto 20"
// @Success 200 {array} storyResponse
// @Failure 500 {string} string "internal error"
// @Router /stories [get]
func listPublishedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		items, err := svc.ListPublished(r.Context(),
			Category(strings.TrimSpace(r.URL.Query().Get("category"))),
			r.URL.Query().Get("q"),
			limit,
		)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]storyResponse, 0, len(items))
		for _, st := range items {
			// En listado no va el cuerpo completo ni los campos editoriales.
			resp := toStoryResponse(st, 0, false)
			resp.Body = ""
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getStoryHandler godoc
// @Summary Ver un relato
// @Description Un relato publicado es público. Pending/rejected solo lo ven su autor o un editor.
// @Tags stories
// @Produce json
// @Param storyID path string true "ID del relato"
// @Success 200 {object} storyResponse
// @Failure 404 {string} string "story not found"
// @Router /stories/{storyID} [get]
func getStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.GetByID(r.Context(), chi.URLParam(r, "storyID"))
		if err != nil {
			http.Error(w, "story not found", http.StatusNotFound)
			return
		}

		claims, _ := middleware.GetClaims(r.Context())
		isPrivileged := claims.UserID == st.AuthorUserID || claims.IsEditor()

		if st.Status != StatusPublished && !isPrivileged {
			// 404 en vez de 403 para no revelar que existe.
			http.Error(w, "story not found", http.StatusNotFound)
			return
		}

		likes, err := svc.LikeCount(r.Context(), st.ID)
		if err != nil {
			likes = 0
		}

		writeJSON(w, http.StatusOK, toStoryResponse(st, likes, isPrivileged))
	}
}

// listMyStoriesHandler godoc
// @Summary Mis relatos
// @Tags stories
// @Produce json
// @Success 200 {array} storyResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/stories [get]
func listMyStoriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByAuthor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]storyResponse, 0, len(items))
		for _, st := range items {
			out = append(out, toStoryResponse(st, 0, true))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listPendingHandler godoc
// @Summary Cola de revisión editorial
// @Description Relatos pendientes de decisión. Solo editores.
// @Tags editorial
// @Produce json
// @Param limit query int false "Máximo de relatos (1-100). Por defecto 50"
// @Success 200 {array} storyResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /editorial/stories [get]
func listPendingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireEditor(w, r); !ok {
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		items, err := svc.ListPending(r.Context(), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]storyResponse, 0, len(items))
		for _, st := range items {
			out = append(out, toStoryResponse(st, 0, true))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// publishStoryHandler godoc
// @Summary Publicar un relato
// @Description Aprueba un relato pendiente. Si falta el resumen y hay proveedor de IA, se genera al publicar. Solo editores.
// @Tags editorial
// @Produce json
// @Param storyID path string true "ID del relato"
// @Success 200 {object} storyResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "story not found"
// @Failure 409 {string} string "story already reviewed"
// @Router /stories/{storyID}/publish [post]
func publishStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireEditor(w, r); !ok {
			return
		}

		st, err := svc.Publish(r.Context(), chi.URLParam(r, "storyID"))
		if err != nil {
			writeDecisionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStoryResponse(st, 0, true))
	}
}

// rejectStoryHandler godoc
// @Summary Rechazar un relato
// @Description Rechaza un relato pendiente con un motivo para el autor. Solo editores.
// @Tags editorial
// @Accept json
// @Produce json
// @Param storyID path string true "ID del relato"
// @Param payload body rejectStoryRequest true "Motivo del rechazo"
// @Success 200 {object} storyResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "story not found"
// @Failure 409 {string} string "story already reviewed"
// @Router /stories/{storyID}/reject [post]
func rejectStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireEditor(w, r); !ok {
			return
		}

		var req rejectStoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.Reject(r.Context(), chi.URLParam(r, "storyID"), req.Reason)
		if err != nil {
			writeDecisionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStoryResponse(st, 0, true))
	}
}

// likeStoryHandler godoc
// @Summary Dar like a un relato
// @Description A lo sumo un like por usuario; repetirlo es idempotente.
// @Tags stories
// @Param storyID path string true "ID del relato"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "story not found"
// @Router /stories/{storyID}/like [post]
func likeStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Like(r.Context(), chi.URLParam(r, "storyID"), claims.UserID); err != nil {
			// ErrNotPublished también se reporta como 404: para el lector
			// un relato no publicado no existe.
			http.Error(w, "story not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// unlikeStoryHandler godoc
// @Summary Quitar el like
// @Tags stories
// @Param storyID path string true "ID del relato"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Router /stories/{storyID}/like [delete]
func unlikeStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Unlike(r.Context(), chi.URLParam(r, "storyID"), claims.UserID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addCommentHandler godoc
// @Summary Comentar un relato
// @Description Solo sobre relatos publicados.
// @Tags stories
// @Accept json
// @Produce json
// @Param storyID path string true "ID del relato"
// @Param payload body addCommentRequest true "Comentario"
// @Success 201 {object} commentResponse
// @Failure 400 {string} string "invalid json / comentario vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "story not found"
// @Router /stories/{storyID}/comments [post]
func addCommentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.AddComment(r.Context(), chi.URLParam(r, "storyID"), claims.UserID, req.Body)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "story not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusCreated, toCommentResponse(c))
	}
}

// listCommentsHandler godoc
// @Summary Comentarios de un relato
// @Tags stories
// @Produce json
// @Param storyID path string true "ID del relato"
// @Success 200 {array} commentResponse
// @Failure 500 {string} string "internal error"
// @Router /stories/{storyID}/comments [get]
func listCommentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListComments(r.Context(), chi.URLParam(r, "storyID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]commentResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCommentResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// removeCommentHandler godoc
// @Summary Eliminar un comentario
// @Description Solo editores.
// @Tags editorial
// @Param storyID path string true "ID del relato"
// @Param commentID path string true "ID del comentario"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "comment not found"
// @Router /stories/{storyID}/comments/{commentID} [delete]
func removeCommentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireEditor(w, r); !ok {
			return
		}

		if err := svc.RemoveComment(r.Context(), chi.URLParam(r, "commentID")); err != nil {
			http.Error(w, "comment not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// enhanceStoryHandler godoc
// @Summary Mejorar redacción con IA
// @Description Devuelve una versión con ortografía/gramática corregidas sin persistir nada; el autor decide. Solo el autor o un editor.
// @Tags stories
// @Produce json
// @Param storyID path string true "ID del relato"
// @Success 200 {object} enhanceResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "story not found"
// @Failure 502 {string} string "ai provider error"
// @Router /stories/{storyID}/enhance [post]
func enhanceStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := svc.GetByID(r.Context(), chi.URLParam(r, "storyID"))
		if err != nil {
			http.Error(w, "story not found", http.StatusNotFound)
			return
		}
		if st.AuthorUserID != claims.UserID && !claims.IsEditor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		enhanced, err := svc.Enhance(r.Context(), st.ID)
		if err != nil {
			http.Error(w, "ai provider error", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, enhanceResponse{Original: st.Body, Enhanced: enhanced})
	}
}

// summarizeStoryHandler godoc
// @Summary Generar resumen con IA
// @Description Genera y guarda el resumen corto del relato (se usa en listados y en el digest). Solo editores.
// @Tags editorial
// @Produce json
// @Param storyID path string true "ID del relato"
// @Success 200 {object} storyResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "story not found"
// @Failure 502 {string} string "ai provider error"
// @Router /stories/{storyID}/summarize [post]
func summarizeStoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireEditor(w, r); !ok {
			return
		}

		st, err := svc.Summarize(r.Context(), chi.URLParam(r, "storyID"))
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				http.Error(w, "story not found", http.StatusNotFound)
				return
			}
			http.Error(w, "ai provider error", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, toStoryResponse(st, 0, true))
	}
}

func requireEditor(w http.ResponseWriter, r *http.Request) (userID string, ok bool) {
	claims, has := middleware.GetClaims(r.Context())
	if !has || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if !claims.IsEditor() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return claims.UserID, true
}

func writeDecisionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyReviewed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "story not found", http.StatusNotFound)
	}
}

// privileged controla si se incluyen los campos editoriales (flag, motivo
// de rechazo) que no son para lectores.
func toStoryResponse(st Story, likeCount int, privileged bool) storyResponse {
	resp := storyResponse{
		ID:           st.ID,
		AuthorUserID: st.AuthorUserID,
		AuthorName:   st.AuthorName,

		Title:    st.Title,
		Body:     st.Body,
		Category: st.Category,
		Summary:  st.Summary,

		Status: st.Status,

		LikeCount: likeCount,

		PublishedAt: st.PublishedAt,
		CreatedAt:   st.CreatedAt,
	}

	if privileged {
		resp.RejectReason = st.RejectReason
		resp.Flagged = st.Flagged
		resp.FlagReason = st.FlagReason
	}

	return resp
}

func toCommentResponse(c Comment) commentResponse {
	return commentResponse{
		ID:           c.ID,
		StoryID:      c.StoryID,
		AuthorUserID: c.AuthorUserID,
		Body:         c.Body,
		CreatedAt:    c.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
