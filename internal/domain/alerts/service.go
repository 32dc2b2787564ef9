package alerts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"med-cabinet/internal/domain/cabinet"
	"med-cabinet/internal/domain/planner"
	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/platform/logger"
)

type Type string

const (
	TypeExpiryError   Type = "expiry-error"
	TypeExpiryWarning Type = "expiry-warning"
	TypeStockError    Type = "stock-error"
	TypeStockWarning  Type = "stock-warning"
)

// typeRank ordena la lista final: errores antes que avisos.
var typeRank = map[Type]int{
	TypeExpiryError:   0,
	TypeStockError:    1,
	TypeExpiryWarning: 2,
	TypeStockWarning:  3,
}

// Alert es derivado: se recalcula en cada consulta, nunca se persiste.
type Alert struct {
	Type  Type
	Title string
	Text  string
}

// expiryWindowDays y stockHorizonDays son las ventanas de aviso: lotes que
// caducan en la próxima semana y medicamentos que no llegan a cubrirla.
const (
	expiryWindowDays = 7
	stockHorizonDays = 7
)

type Service struct {
	stock     *cabinet.Service
	projector *planner.Service
	meds      planner.MedicationLookup
	log       logger.Logger
	now       func() time.Time
}

func NewService(stock *cabinet.Service, projector *planner.Service, meds planner.MedicationLookup, log logger.Logger) *Service {
	return &Service{
		stock:     stock,
		projector: projector,
		meds:      meds,
		log:       log,
		now:       time.Now,
	}
}

// FindAllAlerts junta las dos familias de alertas (caducidad por lote y
// falta de stock por medicamento) y las devuelve ordenadas por tipo.
func (s *Service) FindAllAlerts(ctx context.Context) ([]Alert, error) {
	out := make([]Alert, 0)

	expiry, err := s.expiryAlerts(ctx)
	if err != nil {
		return nil, err
	}
	out = append(out, expiry...)

	stock, err := s.stockAlerts(ctx)
	if err != nil {
		return nil, err
	}
	out = append(out, stock...)

	sort.SliceStable(out, func(i, j int) bool {
		return typeRank[out[i].Type] < typeRank[out[j].Type]
	})
	return out, nil
}

// expiryAlerts: por cada lote con remanente, error si ya caducó (hoy
// incluido), aviso si caduca dentro de la ventana. Un lote produce como
// mucho una alerta; el error gana al aviso.
func (s *Service) expiryAlerts(ctx context.Context) ([]Alert, error) {
	lots, err := s.stock.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}

	today := recurrence.Midnight(s.now())
	deadline := today.AddDate(0, 0, expiryWindowDays)

	out := make([]Alert, 0)
	for _, l := range lots {
		if !l.Units.IsPositive() {
			continue
		}

		expiry := recurrence.Midnight(l.ExpiryDate)
		name := s.medicationName(ctx, l.MedicationID)

		switch {
		case !expiry.After(today):
			out = append(out, Alert{
				Type:  TypeExpiryError,
				Title: "Expired medication",
				Text: fmt.Sprintf("%s: a package expired on %s and still holds %s units",
					name, expiry.Format("2006-01-02"), l.Units),
			})
		case !expiry.After(deadline):
			out = append(out, Alert{
				Type:  TypeExpiryWarning,
				Title: "Medication expiring soon",
				Text: fmt.Sprintf("%s: a package expires on %s",
					name, expiry.Format("2006-01-02")),
			})
		}
	}
	return out, nil
}

// stockAlerts: proyección a una semana; error si no queda nada, aviso si el
// stock no cubre lo requerido.
func (s *Service) stockAlerts(ctx context.Context) ([]Alert, error) {
	matches, err := s.projector.FindUntil(ctx, s.now().AddDate(0, 0, stockHorizonDays))
	if err != nil {
		return nil, err
	}

	out := make([]Alert, 0)
	for _, m := range matches {
		switch {
		case m.AvailableDoses.IsZero():
			out = append(out, Alert{
				Type:  TypeStockError,
				Title: "Out of stock",
				Text: fmt.Sprintf("%s: no stock left, %s doses needed in the next %d days",
					m.Medication.Name, m.RequiredDoses, stockHorizonDays),
			})
		case m.AvailableDoses.LessThan(m.RequiredDoses):
			out = append(out, Alert{
				Type:  TypeStockWarning,
				Title: "Stock running low",
				Text: fmt.Sprintf("%s: %s doses available of %s needed in the next %d days",
					m.Medication.Name, m.AvailableDoses, m.RequiredDoses, stockHorizonDays),
			})
		}
	}
	return out, nil
}

func (s *Service) medicationName(ctx context.Context, id string) string {
	m, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return id
	}
	return m.Name
}
