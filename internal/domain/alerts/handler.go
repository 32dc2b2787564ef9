package alerts

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/alerts", listAlertsHandler(svc))
}

type alertResponse struct {
	Type  Type   `json:"type" enums:"expiry-error,expiry-warning,stock-error,stock-warning"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// listAlertsHandler godoc
// @Summary Alertas de caducidad y stock
// @Description Lotes caducados o por caducar y medicamentos que no cubren la próxima semana, ordenado por tipo (errores primero).
// @Tags alerts
// @Produce json
// @Success 200 {array} alertResponse
// @Router /alerts [get]
func listAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FindAllAlerts(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]alertResponse, 0, len(items))
		for _, a := range items {
			out = append(out, alertResponse{Type: a.Type, Title: a.Title, Text: a.Text})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}
