package intakes

import (
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/schedules"
)

// CompletedIntake es el registro persistente de una ocurrencia tomada.
// ScheduledDate es el timestamp exacto de la ocurrencia (fecha + hora del
// horario), no solo el día. Se crea únicamente desde el Workflow y nunca se
// edita.
type CompletedIntake struct {
	ID            string
	ScheduleID    string
	ScheduledDate time.Time
	CompletedDate time.Time
}

// Intake es una ocurrencia derivada para una fecha consultada; no se
// persiste, se recalcula en cada consulta.
type Intake struct {
	Schedule      schedules.Entry
	ScheduledDate time.Time
	Completed     *CompletedIntake
}

// MedicationDose es la dosis total que un medicamento acumula en una ventana
// de proyección.
type MedicationDose struct {
	MedicationID string
	TotalDose    decimal.Decimal
}
