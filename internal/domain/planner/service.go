package planner

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/cabinet"
	"med-cabinet/internal/domain/intakes"
	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/platform/logger"
)

// DoseMatch compara, por medicamento, la dosis requerida hasta una fecha con
// el stock disponible. Es derivado: se recalcula en cada consulta.
type DoseMatch struct {
	Medication         medications.Medication
	RequiredDoses      decimal.Decimal
	AvailableDoses     decimal.Decimal
	AverageInitialDose decimal.Decimal
}

// MissingDoses es el hueco a cubrir: max(required - available, 0).
func (m DoseMatch) MissingDoses() decimal.Decimal {
	missing := m.RequiredDoses.Sub(m.AvailableDoses)
	if missing.IsNegative() {
		return decimal.Zero
	}
	return missing
}

// PrescriptionsRequired es cuántos envases de dosesPerPackage hacen falta
// para cubrir el hueco: ceil(missing / dosesPerPackage).
func (m DoseMatch) PrescriptionsRequired(dosesPerPackage decimal.Decimal) int64 {
	if !dosesPerPackage.IsPositive() {
		return 0
	}
	return m.MissingDoses().Div(dosesPerPackage).Ceil().IntPart()
}

type MedicationLookup interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
}

type Service struct {
	resolver *intakes.Resolver
	stock    *cabinet.Service
	meds     MedicationLookup
	log      logger.Logger
}

func NewService(resolver *intakes.Resolver, stock *cabinet.Service, meds MedicationLookup, log logger.Logger) *Service {
	return &Service{
		resolver: resolver,
		stock:    stock,
		meds:     meds,
		log:      log,
	}
}

// FindUntil proyecta la dosis requerida de cada medicamento hasta targetDate
// y la cruza con el stock agregado. Un medicamento con dosis requerida pero
// sin lotes aparece con disponible 0.
func (s *Service) FindUntil(ctx context.Context, targetDate time.Time) ([]DoseMatch, error) {
	required, err := s.resolver.FindTotalDosesUntil(ctx, targetDate)
	if err != nil {
		return nil, err
	}

	available, err := s.stock.AggregateAvailableDoses(ctx)
	if err != nil {
		return nil, err
	}
	byMed := make(map[string]cabinet.Aggregate, len(available))
	for _, a := range available {
		byMed[a.MedicationID] = a
	}

	out := make([]DoseMatch, 0, len(required))
	for _, req := range required {
		med, err := s.meds.GetByID(ctx, req.MedicationID)
		if err != nil {
			s.log.Warn("projection references missing medication", map[string]any{
				"medication_id": req.MedicationID,
			})
			continue
		}

		match := DoseMatch{
			Medication:    med,
			RequiredDoses: req.TotalDose,
		}
		if agg, ok := byMed[req.MedicationID]; ok {
			match.AvailableDoses = agg.TotalAvailableDose
			match.AverageInitialDose = agg.AverageInitialDose
		} else {
			match.AvailableDoses = decimal.Zero
			match.AverageInitialDose = decimal.Zero
		}
		out = append(out, match)
	}
	return out, nil
}
