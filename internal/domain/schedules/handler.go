package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/recurrence"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/schedules", func(sr chi.Router) {
		sr.Post("/", createScheduleHandler(svc))
		sr.Get("/", listSchedulesHandler(svc))
		sr.Get("/{scheduleID}", getScheduleHandler(svc))
		sr.Put("/{scheduleID}", editScheduleHandler(svc))
		sr.Delete("/{scheduleID}", deleteScheduleHandler(svc))
	})
}

type recurrenceBody struct {
	Type  string `json:"type" enums:"daily,weekly"`
	Units int    `json:"units"`
}

// scheduleRequest es el cuerpo para crear/editar un horario. Las fechas van
// como YYYY-MM-DD y la hora como HH:MM.
type scheduleRequest struct {
	MedicationID      string          `json:"medication_id"`
	Dose              decimal.Decimal `json:"dose"`
	StartingAt        string          `json:"starting_at"`
	EndingAtInclusive string          `json:"ending_at_inclusive,omitempty"`
	Recurrence        recurrenceBody  `json:"recurrence"`
	Time              string          `json:"time"`
	Description       string          `json:"description,omitempty"`
}

type scheduleResponse struct {
	ID                string          `json:"id"`
	MedicationID      string          `json:"medication_id"`
	MedicationName    string          `json:"medication_name,omitempty"`
	Dose              decimal.Decimal `json:"dose"`
	StartingAt        string          `json:"starting_at"`
	EndingAtInclusive string          `json:"ending_at_inclusive,omitempty"`
	Recurrence        recurrenceBody  `json:"recurrence"`
	Time              string          `json:"time"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func parseScheduleRequest(req scheduleRequest) (CreateInput, error) {
	start, err := time.Parse(dateLayout, req.StartingAt)
	if err != nil {
		return CreateInput{}, errors.New("starting_at must be YYYY-MM-DD")
	}

	var end *time.Time
	if req.EndingAtInclusive != "" {
		e, err := time.Parse(dateLayout, req.EndingAtInclusive)
		if err != nil {
			return CreateInput{}, errors.New("ending_at_inclusive must be YYYY-MM-DD")
		}
		end = &e
	}

	at, err := recurrence.ParseTimeOfDay(req.Time)
	if err != nil {
		return CreateInput{}, err
	}

	return CreateInput{
		MedicationID:      req.MedicationID,
		Dose:              req.Dose,
		StartingAt:        start,
		EndingAtInclusive: end,
		Recurrence: recurrence.Rule{
			Type:  recurrence.Type(req.Recurrence.Type),
			Units: req.Recurrence.Units,
		},
		Time:        at,
		Description: req.Description,
	}, nil
}

// createScheduleHandler godoc
// @Summary Crear horario
// @Description Crea una pauta de toma para un medicamento. starting_at y ending_at_inclusive se normalizan a medianoche.
// @Tags schedules
// @Accept json
// @Produce json
// @Param payload body scheduleRequest true "Datos del horario"
// @Success 201 {object} scheduleResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Router /schedules [post]
func createScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := parseScheduleRequest(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sch, err := svc.Create(r.Context(), in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toScheduleResponse(sch, ""))
	}
}

// listSchedulesHandler godoc
// @Summary Listar horarios
// @Description Lista los horarios unidos con su medicamento. Orden por ?sort=medication|startDate|time y ?order=asc|desc.
// @Tags schedules
// @Produce json
// @Param sort query string false "Campo de orden (medication por defecto)"
// @Param order query string false "asc (default) o desc"
// @Success 200 {array} scheduleResponse
// @Router /schedules [get]
func listSchedulesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := SortBy(r.URL.Query().Get("sort"))
		desc := r.URL.Query().Get("order") == "desc"

		items, err := svc.FindAll(r.Context(), sortBy, desc)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]scheduleResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toScheduleResponse(e.Schedule, e.Medication.Name))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getScheduleHandler godoc
// @Summary Obtener horario
// @Tags schedules
// @Produce json
// @Param scheduleID path string true "ID del horario"
// @Success 200 {object} scheduleResponse
// @Failure 404 {string} string "schedule not found"
// @Router /schedules/{scheduleID} [get]
func getScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sch, err := svc.GetByID(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			http.Error(w, "schedule not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(sch, ""))
	}
}

// editScheduleHandler godoc
// @Summary Editar horario
// @Tags schedules
// @Accept json
// @Produce json
// @Param scheduleID path string true "ID del horario"
// @Param payload body scheduleRequest true "Datos del horario"
// @Success 200 {object} scheduleResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "schedule not found"
// @Router /schedules/{scheduleID} [put]
func editScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := parseScheduleRequest(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sch, err := svc.Edit(r.Context(), chi.URLParam(r, "scheduleID"), in)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "schedule not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(sch, ""))
	}
}

// deleteScheduleHandler godoc
// @Summary Borrar horario
// @Description Borra el horario y, en cascada, sus tomas registradas.
// @Tags schedules
// @Param scheduleID path string true "ID del horario"
// @Success 204 {string} string ""
// @Failure 404 {string} string "schedule not found"
// @Router /schedules/{scheduleID} [delete]
func deleteScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "schedule not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toScheduleResponse(s Schedule, medicationName string) scheduleResponse {
	resp := scheduleResponse{
		ID:             s.ID,
		MedicationID:   s.MedicationID,
		MedicationName: medicationName,
		Dose:           s.Dose,
		StartingAt:     s.StartingAt.Format(dateLayout),
		Recurrence: recurrenceBody{
			Type:  string(s.Recurrence.Type),
			Units: s.Recurrence.Units,
		},
		Time:        s.Time.String(),
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.EndingAtInclusive != nil {
		resp.EndingAtInclusive = s.EndingAtInclusive.Format(dateLayout)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
