package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

// defaultHorizonDays es la ventana de proyección si no se pide otra.
const defaultHorizonDays = 7

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/planner", func(pr chi.Router) {
		pr.Get("/", projectionHandler(svc))
		pr.Get("/export", exportHandler(svc))
	})
}

// doseMatchResponse incluye los valores de presentación derivados: el hueco
// de dosis y los envases necesarios estimados con el tamaño medio de envase.
type doseMatchResponse struct {
	MedicationID          string          `json:"medication_id"`
	MedicationName        string          `json:"medication_name"`
	RequiredDoses         decimal.Decimal `json:"required_doses"`
	AvailableDoses        decimal.Decimal `json:"available_doses"`
	AverageInitialDose    decimal.Decimal `json:"average_initial_dose"`
	MissingDoses          decimal.Decimal `json:"missing_doses"`
	PrescriptionsRequired int64           `json:"prescriptions_required"`
}

func parseUntil(r *http.Request) (time.Time, error) {
	if v := r.URL.Query().Get("until"); v != "" {
		return time.Parse(dateLayout, v)
	}
	return time.Now().AddDate(0, 0, defaultHorizonDays), nil
}

func toDoseMatchResponse(m DoseMatch) doseMatchResponse {
	return doseMatchResponse{
		MedicationID:          m.Medication.ID,
		MedicationName:        m.Medication.Name,
		RequiredDoses:         m.RequiredDoses,
		AvailableDoses:        m.AvailableDoses,
		AverageInitialDose:    m.AverageInitialDose,
		MissingDoses:          m.MissingDoses(),
		PrescriptionsRequired: m.PrescriptionsRequired(m.AverageInitialDose),
	}
}

// projectionHandler godoc
// @Summary Proyección de dosis vs stock
// @Description Por medicamento: dosis requeridas hasta la fecha objetivo, stock disponible y hueco resultante. Sin ?until proyecta 7 días.
// @Tags planner
// @Produce json
// @Param until query string false "Fecha objetivo YYYY-MM-DD"
// @Success 200 {array} doseMatchResponse
// @Failure 400 {string} string "until inválida"
// @Router /planner [get]
func projectionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		until, err := parseUntil(r)
		if err != nil {
			http.Error(w, "until must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		matches, err := svc.FindUntil(r.Context(), until)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseMatchResponse, 0, len(matches))
		for _, m := range matches {
			out = append(out, toDoseMatchResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

var exportHeader = []string{
	"Medication",
	"Required doses",
	"Available doses",
	"Missing doses",
	"Avg package size",
	"Packages to order",
}

// exportHandler godoc
// @Summary Exportar proyección a Excel
// @Description Misma proyección que /planner, como hoja .xlsx para llevar a la farmacia.
// @Tags planner
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param until query string false "Fecha objetivo YYYY-MM-DD"
// @Success 200 {string} string "archivo xlsx"
// @Failure 400 {string} string "until inválida"
// @Router /planner/export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		until, err := parseUntil(r)
		if err != nil {
			http.Error(w, "until must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		matches, err := svc.FindUntil(r.Context(), until)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		buf, err := buildExportFile(matches)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="dose-plan-%s.xlsx"`, until.Format(dateLayout)))
		_, _ = w.Write(buf.Bytes())
	}
}

func buildExportFile(matches []DoseMatch) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Dose plan"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, m := range matches {
		row := []any{
			m.Medication.Name,
			m.RequiredDoses.InexactFloat64(),
			m.AvailableDoses.InexactFloat64(),
			m.MissingDoses().InexactFloat64(),
			m.AverageInitialDose.InexactFloat64(),
			m.PrescriptionsRequired(m.AverageInitialDose),
		}
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
