package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Put("/{medicationID}", editMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})

	r.Get("/medication-types", listTypesHandler(svc))
}

// medicationRequest es el cuerpo para crear/editar un medicamento.
type medicationRequest struct {
	Name             string `json:"name"`
	MedicationTypeID string `json:"medication_type_id"`
}

// medicationResponse incluye la etiqueta de unidad derivada del tipo.
type medicationResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	MedicationTypeID string    `json:"medication_type_id"`
	Unit             string    `json:"unit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type medicationTypeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Individual bool   `json:"individual"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description Crea un medicamento del catálogo. El tipo debe existir (ver /medication-types).
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body medicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Name:             req.Name,
			MedicationTypeID: req.MedicationTypeID,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(r, svc, m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(r, svc, m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicamento
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(r, svc, m))
	}
}

// editMedicationHandler godoc
// @Summary Editar medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body medicationRequest true "Datos del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [put]
func editMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Edit(r.Context(), chi.URLParam(r, "medicationID"), CreateInput{
			Name:             req.Name,
			MedicationTypeID: req.MedicationTypeID,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "medication not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(r, svc, m))
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicamento
// @Description Borra el medicamento y, en cascada, sus horarios, lotes del botiquín y tomas registradas.
// @Tags medications
// @Param medicationID path string true "ID del medicamento"
// @Success 204 {string} string ""
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "medicationID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "medication not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listTypesHandler godoc
// @Summary Listar tipos de medicamento
// @Tags medications
// @Produce json
// @Success 200 {array} medicationTypeResponse
// @Router /medication-types [get]
func listTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListTypes(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationTypeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, medicationTypeResponse{
				ID:         t.ID,
				Name:       t.Name,
				Unit:       t.Unit,
				Individual: t.Individual,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationResponse(r *http.Request, svc *Service, m Medication) medicationResponse {
	unit := ""
	if t, err := svc.GetType(r.Context(), m.MedicationTypeID); err == nil {
		unit = t.Unit
	}
	return medicationResponse{
		ID:               m.ID,
		Name:             m.Name,
		MedicationTypeID: m.MedicationTypeID,
		Unit:             unit,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo,
// igual que en el resto de módulos; si se repite más, se extrae.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
