package photos

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memoria-viva/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/photos", func(pr chi.Router) {
		pr.Post("/", submitPhotoHandler(svc))
		pr.Get("/", listPhotosHandler(svc))
		pr.Get("/{photoID}", getPhotoHandler(svc))

		// Curaduría (solo editores)
		pr.Post("/{photoID}/feature", featurePhotoHandler(svc, true))
		pr.Post("/{photoID}/unfeature", featurePhotoHandler(svc, false))
		pr.Post("/{photoID}/hide", hidePhotoHandler(svc))
	})
}

type submitPhotoRequest struct {
	Caption  string `json:"caption"`
	Era      string `json:"era"`
	Location string `json:"location"`
	ImageURL string `json:"image_url"`
}

type photoResponse struct {
	ID              string `json:"id"`
	SubmitterUserID string `json:"submitter_user_id"`

	Caption  string `json:"caption"`
	Era      string `json:"era,omitempty"`
	Location string `json:"location,omitempty"`
	ImageURL string `json:"image_url"`

	Featured bool        `json:"featured"`
	Status   PhotoStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// submitPhotoHandler godoc
// @Summary Aportar una foto al archivo
// @Description Registra una foto antigua de la región. El archivo ya debe estar subido al storage; acá va la URL. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags photos
// @Accept json
// @Produce json
// @Param payload body submitPhotoRequest true "Datos de la foto"
// @Success 201 {object} photoResponse
// @Failure 400 {string} string "invalid json / URL inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /photos [post]
func submitPhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitPhotoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			Caption:  req.Caption,
			Era:      req.Era,
			Location: req.Location,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toPhotoResponse(p))
	}
}

// listPhotosHandler godoc
// @Summary Listar el archivo de fotos
// @Description Fotos visibles, más recientes primero. Con featured=true solo las destacadas.
// @Tags photos
// @Produce json
// @Param featured query bool false "Solo destacadas"
// @Param limit query int false "Máximo (1-100). Por defecto 30"
// @Success 200 {array} photoResponse
// @Failure 500 {string} string "internal error"
// @Router /photos [get]
func listPhotosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 30
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		featuredOnly := strings.EqualFold(r.URL.Query().Get("featured"), "true")

		items, err := svc.List(r.Context(), featuredOnly, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]photoResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPhotoResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPhotoHandler godoc
// @Summary Ver una foto del archivo
// @Tags photos
// @Produce json
// @Param photoID path string true "ID de la foto"
// @Success 200 {object} photoResponse
// @Failure 404 {string} string "photo not found"
// @Router /photos/{photoID} [get]
func getPhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "photoID"))
		if err != nil || p.Status != StatusVisible {
			http.Error(w, "photo not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPhotoResponse(p))
	}
}

// featurePhotoHandler godoc
// @Summary Destacar / quitar destaque de una foto
// @Description Solo editores.
// @Tags photos
// @Produce json
// @Param photoID path string true "ID de la foto"
// @Success 200 {object} photoResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "photo not found"
// @Router /photos/{photoID}/feature [post]
func featurePhotoHandler(svc *Service, featured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditor(w, r) {
			return
		}

		p, err := svc.SetFeatured(r.Context(), chi.URLParam(r, "photoID"), featured)
		if err != nil {
			http.Error(w, "photo not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPhotoResponse(p))
	}
}

// hidePhotoHandler godoc
// @Summary Ocultar una foto
// @Description La saca del listado público sin borrarla. Solo editores.
// @Tags photos
// @Produce json
// @Param photoID path string true "ID de la foto"
// @Success 200 {object} photoResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "photo not found"
// @Router /photos/{photoID}/hide [post]
func hidePhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditor(w, r) {
			return
		}

		p, err := svc.Hide(r.Context(), chi.URLParam(r, "photoID"))
		if err != nil {
			http.Error(w, "photo not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPhotoResponse(p))
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

func toPhotoResponse(p Photo) photoResponse {
	return photoResponse{
		ID:              p.ID,
		SubmitterUserID: p.SubmitterUserID,
		Caption:         p.Caption,
		Era:             p.Era,
		Location:        p.Location,
		ImageURL:        p.ImageURL,
		Featured:        p.Featured,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
