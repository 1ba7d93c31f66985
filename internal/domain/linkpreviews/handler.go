package linkpreviews

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/linkpreview", previewHandler(svc))
}

type previewResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// previewHandler godoc
// @Summary Vista previa de un link externo
// @Description Resuelve título, descripción e imagen de una URL (noticias locales, videos). Cachea el resultado un rato.
// @Tags linkpreview
// @Produce json
// @Param url query string true "URL http(s) a resolver"
// @Success 200 {object} previewResponse
// @Failure 400 {string} string "invalid url"
// @Failure 502 {string} string "preview unavailable"
// @Failure 503 {string} string "resolver not configured"
// @Router /linkpreview [get]
func previewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Resolve(r.Context(), r.URL.Query().Get("url"))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid url", http.StatusBadRequest)
			case errors.Is(err, ErrNoResolver):
				http.Error(w, "resolver not configured", http.StatusServiceUnavailable)
			default:
				http.Error(w, "preview unavailable", http.StatusBadGateway)
			}
			return
		}
		writeJSON(w, http.StatusOK, previewResponse{
			URL:         p.URL,
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			SiteName:    p.SiteName,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
