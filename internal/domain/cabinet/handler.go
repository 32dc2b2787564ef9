package cabinet

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cabinet", func(cr chi.Router) {
		cr.Post("/", createEntryHandler(svc))
		cr.Get("/", listEntriesHandler(svc))
		cr.Get("/{entryID}", getEntryHandler(svc))
		cr.Put("/{entryID}", editEntryHandler(svc))
		cr.Delete("/{entryID}", deleteEntryHandler(svc))
		cr.Post("/{entryID}/subtract", subtractUnitsHandler(svc))
	})
}

// entryRequest es el cuerpo para crear/editar un lote del botiquín.
type entryRequest struct {
	MedicationID string          `json:"medication_id"`
	Units        decimal.Decimal `json:"units"`
	InitialUnits decimal.Decimal `json:"initial_units"`
	ExpiryDate   string          `json:"expiry_date"` // YYYY-MM-DD
}

type entryResponse struct {
	ID           string          `json:"id"`
	MedicationID string          `json:"medication_id"`
	Units        decimal.Decimal `json:"units"`
	InitialUnits decimal.Decimal `json:"initial_units"`
	ExpiryDate   string          `json:"expiry_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type subtractRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func parseEntryRequest(req entryRequest) (CreateInput, error) {
	expiry, err := time.Parse(dateLayout, req.ExpiryDate)
	if err != nil {
		return CreateInput{}, errors.New("expiry_date must be YYYY-MM-DD")
	}
	return CreateInput{
		MedicationID: req.MedicationID,
		Units:        req.Units,
		InitialUnits: req.InitialUnits,
		ExpiryDate:   expiry,
	}, nil
}

// createEntryHandler godoc
// @Summary Crear lote del botiquín
// @Description Da de alta un envase físico de un medicamento con su remanente, unidades iniciales y caducidad.
// @Tags cabinet
// @Accept json
// @Produce json
// @Param payload body entryRequest true "Datos del lote"
// @Success 201 {object} entryResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Router /cabinet [post]
func createEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := parseEntryRequest(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toEntryResponse(e))
	}
}

// listEntriesHandler godoc
// @Summary Listar lotes del botiquín
// @Tags cabinet
// @Produce json
// @Param medicationId query string false "Filtrar por medicamento"
// @Success 200 {array} entryResponse
// @Router /cabinet [get]
func listEntriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FindAll(r.Context(), r.URL.Query().Get("medicationId"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getEntryHandler godoc
// @Summary Obtener lote
// @Tags cabinet
// @Produce json
// @Param entryID path string true "ID del lote"
// @Success 200 {object} entryResponse
// @Failure 404 {string} string "cabinet entry not found"
// @Router /cabinet/{entryID} [get]
func getEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.FindByID(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			http.Error(w, "cabinet entry not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// editEntryHandler godoc
// @Summary Editar lote
// @Tags cabinet
// @Accept json
// @Produce json
// @Param entryID path string true "ID del lote"
// @Param payload body entryRequest true "Datos del lote"
// @Success 200 {object} entryResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "cabinet entry not found"
// @Router /cabinet/{entryID} [put]
func editEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := parseEntryRequest(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := svc.Edit(r.Context(), chi.URLParam(r, "entryID"), in)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "cabinet entry not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// deleteEntryHandler godoc
// @Summary Borrar lote
// @Tags cabinet
// @Param entryID path string true "ID del lote"
// @Success 204 {string} string ""
// @Failure 404 {string} string "cabinet entry not found"
// @Router /cabinet/{entryID} [delete]
func deleteEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "entryID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "cabinet entry not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// subtractUnitsHandler godoc
// @Summary Restar unidades de un lote
// @Description Edición directa de un lote. A diferencia del descuento automático por toma, esta vía falla con 409 si el lote quedara en negativo.
// @Tags cabinet
// @Accept json
// @Produce json
// @Param entryID path string true "ID del lote"
// @Param payload body subtractRequest true "Cantidad a restar"
// @Success 200 {object} entryResponse
// @Failure 400 {string} string "invalid json / cantidad inválida"
// @Failure 404 {string} string "cabinet entry not found"
// @Failure 409 {string} string "insufficient stock"
// @Router /cabinet/{entryID}/subtract [post]
func subtractUnitsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.SubtractUnits(r.Context(), chi.URLParam(r, "entryID"), req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "cabinet entry not found", http.StatusNotFound)
			case errors.Is(err, ErrInsufficientStock):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		MedicationID: e.MedicationID,
		Units:        e.Units,
		InitialUnits: e.InitialUnits,
		ExpiryDate:   e.ExpiryDate.Format(dateLayout),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
