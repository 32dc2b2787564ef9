package intakes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, resolver *Resolver, workflow *Workflow) {
	r.Route("/intakes", func(ir chi.Router) {
		ir.Get("/", listIntakesHandler(resolver))
		ir.Post("/complete", completeIntakeHandler(workflow))
	})
}

// intakeResponse es una ocurrencia del día, con su registro de toma si ya
// se completó.
type intakeResponse struct {
	ScheduleID     string          `json:"schedule_id"`
	MedicationID   string          `json:"medication_id"`
	MedicationName string          `json:"medication_name"`
	Dose           decimal.Decimal `json:"dose"`
	ScheduledDate  time.Time       `json:"scheduled_date"`
	Completed      *completedBody  `json:"completed,omitempty"`
}

type completedBody struct {
	ID            string    `json:"id"`
	CompletedDate time.Time `json:"completed_date"`
}

type completeRequest struct {
	ScheduleID    string `json:"schedule_id"`
	ScheduledDate string `json:"scheduled_date"` // RFC3339
}

// listIntakesHandler godoc
// @Summary Ocurrencias de toma de un día
// @Description Calcula las tomas que tocan en la fecha pedida (hoy por defecto), ordenadas por hora, marcando las ya completadas.
// @Tags intakes
// @Produce json
// @Param date query string false "Fecha YYYY-MM-DD (default hoy)"
// @Success 200 {array} intakeResponse
// @Failure 400 {string} string "date inválida"
// @Router /intakes [get]
func listIntakesHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now()
		if v := r.URL.Query().Get("date"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = t
		}

		items, err := resolver.FindByDate(r.Context(), date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]intakeResponse, 0, len(items))
		for _, in := range items {
			resp := intakeResponse{
				ScheduleID:     in.Schedule.ID,
				MedicationID:   in.Schedule.MedicationID,
				MedicationName: in.Schedule.Medication.Name,
				Dose:           in.Schedule.Dose,
				ScheduledDate:  in.ScheduledDate,
			}
			if in.Completed != nil {
				resp.Completed = &completedBody{
					ID:            in.Completed.ID,
					CompletedDate: in.Completed.CompletedDate,
				}
			}
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// completeIntakeHandler godoc
// @Summary Registrar una toma
// @Description Registra la ocurrencia como tomada y descuenta la dosis del stock (FEFO) vía el bus de eventos. No hay guarda de duplicados: completar dos veces descuenta dos veces.
// @Tags intakes
// @Accept json
// @Produce json
// @Param payload body completeRequest true "Ocurrencia a completar; scheduled_date en RFC3339"
// @Success 201 {object} completedBody
// @Failure 400 {string} string "invalid json / horario inexistente"
// @Router /intakes/complete [post]
func completeIntakeHandler(workflow *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledDate)
		if err != nil {
			http.Error(w, "scheduled_date must be RFC3339", http.StatusBadRequest)
			return
		}

		c, err := workflow.Complete(r.Context(), CompleteInput{
			ScheduleID:    req.ScheduleID,
			ScheduledDate: scheduledAt,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, completedBody{
			ID:            c.ID,
			CompletedDate: c.CompletedDate,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
